package stdx

// Must0 panics if the provided error is not nil. Use it where an error is not
// expected and should terminate the program.
func Must0(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 returns v if err is nil and panics otherwise.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
