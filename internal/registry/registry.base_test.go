package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterGet(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("b", 1)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = r.Register("b", 2)
	require.NoError(t, err)
	assert.False(t, isNew)

	_, err = r.Register("", 3)
	assert.ErrorIs(t, err, ErrEmptyName)

	r.MustRegister("a", 10)
	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Freeze(t *testing.T) {
	r := NewRegistry[string]()
	r.MustRegister("x", "1")
	r.Freeze()
	r.Freeze()

	assert.True(t, r.Frozen())
	_, err := r.Register("y", "2")
	assert.True(t, errors.Is(err, ErrFrozen))
	assert.Panics(t, func() { r.MustRegister("z", "3") })

	v, ok := r.Get("x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}
