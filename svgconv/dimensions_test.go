package svgconv

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveViewBoxWins(t *testing.T) {
	r := NewResolver(&fakeBackend{})

	dims, err := r.Resolve(`<svg viewBox="0 0 100 50" width="20" height="20"></svg>`)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{
		IntrinsicSize: IntrinsicSize{Width: 100, Height: 50},
		ViewBox:       Box{W: 100, H: 50},
		HasViewBox:    true,
		Method:        FromViewBox,
	}, dims)

	dims, err = r.Resolve(`<svg viewBox="-10,5 12.5 4"></svg>`)
	require.NoError(t, err)
	assert.Equal(t, Box{X: -10, Y: 5, W: 12.5, H: 4}, dims.ViewBox)
	assert.Equal(t, IntrinsicSize{Width: 12.5, Height: 4}, dims.IntrinsicSize)
}

func TestResolveMeasuredFallback(t *testing.T) {
	r := NewResolver(&fakeBackend{})

	for _, markup := range []string{
		`<svg width="40" height="30"></svg>`,
		`<svg viewBox="0 0 0 10" width="40" height="30"></svg>`,
		`<svg viewBox="0 0 10" width="40" height="30"></svg>`,
	} {
		dims, err := r.Resolve(markup)
		require.NoError(t, err, markup)
		assert.Equal(t, FromMeasure, dims.Method)
		assert.False(t, dims.HasViewBox)
		assert.Equal(t, IntrinsicSize{Width: 40, Height: 30}, dims.IntrinsicSize)
		assert.Equal(t, Box{W: 40, H: 30}, dims.ViewBox)
	}
}

func TestResolveFailures(t *testing.T) {
	r := NewResolver(&fakeBackend{})
	for _, markup := range []string{
		`<svg></svg>`,
		`<svg width="40"></svg>`,
		`plain text`,
	} {
		_, err := r.Resolve(markup)
		assert.ErrorIs(t, err, ErrUnresolvableDimensions, markup)
	}

	_, err := ResolveDocument(fakeDoc{width: 3, measureErr: errors.New("unexpected EOF")})
	assert.ErrorIs(t, err, ErrUnresolvableDimensions)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.EqualError(t, decodeErr.Err, "unexpected EOF")

	// sizes from attributes don't need the geometry
	dims, err := ResolveDocument(fakeDoc{width: 3, height: 2, measureErr: errors.New("unexpected EOF")})
	require.NoError(t, err)
	assert.Equal(t, IntrinsicSize{3, 2}, dims.IntrinsicSize)

	_, err = ResolveDocument(fakeDoc{width: math.Inf(1), height: 3})
	assert.ErrorIs(t, err, ErrUnresolvableDimensions)
	_, err = ResolveDocument(fakeDoc{viewBox: Box{W: math.NaN(), H: 2}, hasViewBox: true})
	assert.ErrorIs(t, err, ErrUnresolvableDimensions)
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "viewBox", FromViewBox.String())
	assert.Equal(t, "measured", FromMeasure.String())
	assert.Equal(t, "100x50", IntrinsicSize{100, 50}.String())
}
