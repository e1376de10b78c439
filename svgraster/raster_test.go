package svgraster

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *svgicon.SvgIcon {
	t.Helper()
	icon, err := svgicon.Parser{ErrorMode: svgicon.StrictErrorMode}.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return icon
}

func render(t *testing.T, icon *svgicon.SvgIcon, width, height int) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, Rasterize(context.Background(), icon, img))
	return img
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestRasterFill(t *testing.T) {
	icon := parse(t, `<svg viewBox="0 0 10 10"><rect x="0" y="0" width="5" height="10" fill="#ff0000"/></svg>`)

	img := render(t, icon, 20, 20)

	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, rgba(img.At(4, 10)))
	assert.Equal(t, color.RGBA{}, rgba(img.At(15, 10)))
}

func TestRasterStroke(t *testing.T) {
	icon := parse(t, `<svg viewBox="0 0 10 10"><line x1="0" y1="5" x2="10" y2="5" stroke="blue" stroke-width="2"/></svg>`)

	img := render(t, icon, 10, 10)

	assert.Equal(t, color.RGBA{0, 0, 0xff, 0xff}, rgba(img.At(5, 4)))
	assert.Equal(t, color.RGBA{}, rgba(img.At(5, 1)))
}

func TestRasterGradient(t *testing.T) {
	icon := parse(t, `<svg viewBox="0 0 100 10">
	<defs>
		<linearGradient id="g">
			<stop offset="0" stop-color="black"/>
			<stop offset="1" stop-color="white"/>
		</linearGradient>
	</defs>
	<rect width="100" height="10" fill="url(#g)"/>
</svg>`)

	img := render(t, icon, 100, 10)

	left, right := rgba(img.At(2, 5)), rgba(img.At(97, 5))
	assert.Less(t, left.R, right.R)
	assert.Equal(t, uint8(0xff), left.A)
}

func TestRasterizeCanceled(t *testing.T) {
	icon := parse(t, `<svg viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.ErrorIs(t, Rasterize(ctx, icon, img), context.Canceled)
}
