package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCached(t *testing.T) {
	var calls int
	g := Cached(func() (int, error) {
		calls++
		return calls, nil
	}, time.Hour)

	v, err := g()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// second access is served from cache
	v, err = g()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)

	ResetCached()

	v, err = g()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCachedError(t *testing.T) {
	expected := errors.New("upstream")

	var calls int
	g := Cached(func() (int, error) {
		calls++
		return 0, expected
	}, time.Hour)

	_, err := g()
	assert.ErrorIs(t, err, expected)

	// errors are cached like values
	_, err = g()
	assert.ErrorIs(t, err, expected)
	assert.Equal(t, 1, calls)
}
