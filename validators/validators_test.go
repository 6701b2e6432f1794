package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonEmpty(t *testing.T) {
	v := NonEmpty()

	assert.NoError(t, v("hello"))
	assert.NoError(t, v("  padded  "))
	assert.Error(t, v(""))
	assert.Error(t, v("   \n\t  "))
}

func TestJSONObject(t *testing.T) {
	v := JSONObject()

	assert.NoError(t, v(`{"name":"x"}`))
	assert.NoError(t, v("  {\"a\":1}\n"))
	assert.Error(t, v("not json"))
	assert.Error(t, v(`[1,2,3]`))
	assert.Error(t, v(`"just a string"`))
	assert.Error(t, v(`{"broken":`))
}

type review struct {
	Title   string  `json:"title"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment,omitempty"`
}

func TestShaped(t *testing.T) {
	v := Shaped[review]()

	assert.NoError(t, v(`{"title":"good","rating":4.5}`))
	assert.NoError(t, v(`{"title":"good","rating":4.5,"comment":"nice"}`))

	err := v(`{"title":"good"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating")

	err = v(`{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "rating")

	assert.Error(t, v(`[{"title":"good","rating":4.5}]`))
}

func TestAll(t *testing.T) {
	first := errors.New("first failure")
	reject := func(string) error { return first }
	accept := func(string) error { return nil }

	assert.NoError(t, All(accept, accept)(""))
	assert.ErrorIs(t, All(accept, reject, func(string) error { return errors.New("later") })(""), first)
	assert.NoError(t, All()(""))
}
