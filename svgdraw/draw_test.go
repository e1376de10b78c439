package svgdraw

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"testing"

	"github.com/benoitkugler/svg2png/svgconv"
	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="red"/></svg>`

func parseDoc(t *testing.T, markup string) svgconv.Document {
	t.Helper()
	doc, err := Backend{}.ParseDocument(markup)
	require.NoError(t, err)
	return doc
}

func TestViewBox(t *testing.T) {
	for _, test := range []struct {
		markup string
		want   svgconv.Box
		ok     bool
	}{
		{`<svg viewBox="0 0 100 50"></svg>`, svgconv.Box{W: 100, H: 50}, true},
		{`<?xml version="1.0"?><!-- logo --><svg VIEWBOX="-5,2.5 10 20">`, svgconv.Box{X: -5, Y: 2.5, W: 10, H: 20}, true},
		{`<html><body><p>before</p><svg viewBox="0 0 0 3"></svg></body></html>`, svgconv.Box{H: 3}, true},
		{`<svg viewBox="0 0 100"></svg>`, svgconv.Box{}, false},
		{`<svg viewBox="0 0 a b"></svg>`, svgconv.Box{}, false},
		{`<svg width="10"></svg>`, svgconv.Box{}, false},
	} {
		got, ok := parseDoc(t, test.markup).ViewBox()
		assert.Equal(t, test.ok, ok, test.markup)
		assert.Equal(t, test.want, got, test.markup)
	}
}

func TestParseDocumentWithoutSVG(t *testing.T) {
	_, err := Backend{}.ParseDocument(`<html><p>no image</p></html>`)
	assert.Error(t, err)
}

func TestMeasure(t *testing.T) {
	for _, test := range []struct {
		markup        string
		width, height float64
	}{
		{`<svg width="2in" height="48"></svg>`, 192, 48},
		{`<svg width="100%" height="10mm"><rect x="10" y="10" width="30" height="20"/></svg>`, 40, 37.795},
		{`<svg><rect x="10" y="10" width="30" height="20"/></svg>`, 40, 30},
		{`<svg><line x1="0" y1="0" x2="50" y2="0" stroke="black" stroke-width="4"/></svg>`, 52, 2},
		{`<svg><rect x="-10" y="-10" width="5" height="5"/></svg>`, 0, 0},
		// malformed: only the attributes are usable
		{`<svg width="12" height="7"><rect`, 12, 7},
		{`<svg><rect width="12" height="7">`, 0, 0},
		{`<svg></svg>`, 0, 0},
	} {
		w, h := parseDoc(t, test.markup).Measure()
		assert.InDelta(t, test.width, w, 1e-2, test.markup)
		assert.InDelta(t, test.height, h, 1e-2, test.markup)
	}
}

func TestResolve(t *testing.T) {
	r := svgconv.NewResolver(Backend{})

	dims, err := r.Resolve(`<svg viewBox="0 0 100 50" width="10" height="10"><circle r="400"/></svg>`)
	require.NoError(t, err)
	assert.Equal(t, svgconv.FromViewBox, dims.Method)
	assert.Equal(t, svgconv.IntrinsicSize{Width: 100, Height: 50}, dims.IntrinsicSize)

	dims, err = r.Resolve(`<svg><circle cx="20" cy="10" r="10"/></svg>`)
	require.NoError(t, err)
	assert.Equal(t, svgconv.FromMeasure, dims.Method)
	assert.InDelta(t, 30, dims.Width, 0.1)
	assert.InDelta(t, 20, dims.Height, 0.1)

	_, err = r.Resolve(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	assert.ErrorIs(t, err, svgconv.ErrUnresolvableDimensions)
	assert.NotErrorIs(t, err, svgconv.ErrDecode)

	// malformed, without viewBox: the decoding failure is the cause
	_, err = r.Resolve(`<svg><rect width="100"`)
	assert.ErrorIs(t, err, svgconv.ErrUnresolvableDimensions)
	assert.ErrorIs(t, err, svgconv.ErrDecode)
}

func TestRasterize(t *testing.T) {
	img, err := Backend{}.Rasterize(context.Background(), svgconv.NewEmbeddableImage(redSquare), 20, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, color.RGBAModel.Convert(img.At(10, 10)))

	// no view box: the geometry extent is used
	img, err = Backend{}.Rasterize(context.Background(),
		svgconv.NewEmbeddableImage(`<svg><rect x="5" y="0" width="5" height="10" fill="blue"/></svg>`), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 0xff, 0xff}, color.RGBAModel.Convert(img.At(7, 5)))
	assert.Equal(t, color.RGBA{}, color.RGBAModel.Convert(img.At(2, 5)))
}

func TestRasterizeErrors(t *testing.T) {
	ctx := context.Background()
	for _, markup := range []string{
		`<svg viewBox="0 0 10 10"><rect width="10"`,
		`<svg></svg>`,
	} {
		_, err := Backend{}.Rasterize(ctx, svgconv.NewEmbeddableImage(markup), 10, 10)
		assert.Error(t, err, markup)
	}

	_, err := Backend{}.Rasterize(ctx, svgconv.EmbeddableImage("data:image/png;base64,AAAA"), 10, 10)
	assert.Error(t, err)

	text := `<svg viewBox="0 0 10 10"><text>hi</text></svg>`
	_, err = Backend{ErrorMode: svgicon.StrictErrorMode}.Rasterize(ctx, svgconv.NewEmbeddableImage(text), 10, 10)
	assert.Error(t, err)
	_, err = Backend{}.Rasterize(ctx, svgconv.NewEmbeddableImage(text), 10, 10)
	assert.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Backend{}.Rasterize(canceled, svgconv.NewEmbeddableImage(redSquare), 10, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConversion(t *testing.T) {
	r := svgconv.NewRasterizer(Backend{}, nil)

	res, err := r.Render(context.Background(), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50" fill="green"/></svg>`, 2)
	require.NoError(t, err)
	assert.Equal(t, 200, res.OutputWidth)
	assert.Equal(t, 100, res.OutputHeight)
	img, err := png.Decode(bytes.NewReader(res.PNG))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0x80, 0, 0xff}, color.RGBAModel.Convert(img.At(100, 50)))

	_, err = r.Render(context.Background(), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100"`, 2)
	assert.ErrorIs(t, err, svgconv.ErrDecode)
}
