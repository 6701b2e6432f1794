// Package registry provides a generic build-then-freeze registry. A Builder
// accumulates (id, value) pairs in registration order; Freeze rejects
// duplicate ids and returns an immutable view that is safe for concurrent
// readers.
package registry

import (
	"slices"

	"github.com/alphadose/haxmap"
)

type entry[T any] struct {
	id    string
	value T
}

// Builder accumulates registrations before freezing. It is not safe for
// concurrent use; freeze it before sharing.
type Builder[T any] struct {
	entries []entry[T]
}

// NewBuilder returns an empty Builder.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{}
}

// Add records a registration. Duplicates are detected at Freeze time, not
// here, so callers can compose registrations from multiple sources first.
func (b *Builder[T]) Add(id string, value T) *Builder[T] {
	b.entries = append(b.entries, entry[T]{id: id, value: value})
	return b
}

// Freeze validates the accumulated registrations and returns an immutable
// registry. The second return value lists ids registered more than once; the
// registry is nil when it is non-empty.
func (b *Builder[T]) Freeze() (*Frozen[T], []string) {
	var duplicates []string
	seen := make(map[string]struct{}, len(b.entries))
	for _, e := range b.entries {
		if _, ok := seen[e.id]; ok {
			if !slices.Contains(duplicates, e.id) {
				duplicates = append(duplicates, e.id)
			}
			continue
		}
		seen[e.id] = struct{}{}
	}
	if len(duplicates) > 0 {
		return nil, duplicates
	}

	values := haxmap.New[string, T](uintptr(max(len(b.entries), 1)))
	ids := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		values.Set(e.id, e.value)
		ids = append(ids, e.id)
	}
	return &Frozen[T]{values: values, ids: ids}, nil
}

// Frozen is an immutable id to value mapping. Lookups never mutate it, so any
// number of goroutines may read it concurrently.
type Frozen[T any] struct {
	values *haxmap.Map[string, T]
	ids    []string
}

// Get returns the value registered under id.
func (f *Frozen[T]) Get(id string) (T, bool) {
	return f.values.Get(id)
}

// IDs returns the registered ids in registration order.
func (f *Frozen[T]) IDs() []string {
	return slices.Clone(f.ids)
}

// Len returns the number of registrations.
func (f *Frozen[T]) Len() int {
	return len(f.ids)
}
