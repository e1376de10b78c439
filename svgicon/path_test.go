package svgicon

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func TestGetPoints(t *testing.T) {
	var c pathCursor
	require.NoError(t, c.getPoints("1.5.5-2e1,3 \n+4"))
	assert.Equal(t, []float64{1.5, 0.5, -20, 3, 4}, c.points)

	assert.Error(t, c.getPoints("1 x 2"))
}

func formatPath(p Path) string {
	pt := func(p fixed.Point26_6) string {
		return fmt.Sprintf("%.3f,%.3f", float64(p.X)/64, float64(p.Y)/64)
	}
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = "M" + pt(fixed.Point26_6(op))
		case LineTo:
			chunks[i] = "L" + pt(fixed.Point26_6(op))
		case QuadTo:
			chunks[i] = "Q" + pt(op[0]) + "," + pt(op[1])
		case CubicTo:
			chunks[i] = "C" + pt(op[0]) + "," + pt(op[1]) + "," + pt(op[2])
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

func TestCompilePath(t *testing.T) {
	for _, tc := range []struct {
		d, exp string
	}{
		{"M10 10 h5 v5 z", "M10.000,10.000 L15.000,10.000 L15.000,15.000 Z"},
		{"m10 10 l5 0 0 5z", "M10.000,10.000 L15.000,10.000 L15.000,15.000 Z"},
		{"M0 0 10 0 10 10", "M0.000,0.000 L10.000,0.000 L10.000,10.000"},
		{"M0 0 Q5 5 10 0 T20 0", "M0.000,0.000 Q5.000,5.000,10.000,0.000 Q15.000,-5.000,20.000,0.000"},
	} {
		var c pathCursor
		require.NoError(t, c.compilePath(tc.d), tc.d)
		assert.Equal(t, tc.exp, formatPath(c.path), tc.d)
	}
}

func TestCompilePathArc(t *testing.T) {
	var c pathCursor
	require.NoError(t, c.compilePath("M0 10 A10 10 0 0 1 20 10"))
	last, ok := c.path[len(c.path)-1].(CubicTo)
	require.True(t, ok)
	assert.Equal(t, toFixedP(20, 10), last[2])
}

func TestCompilePathErrors(t *testing.T) {
	for _, d := range []string{"M10", "L1 2 3", "C1 2 3 4 5", "M0 0 Z 1"} {
		var c pathCursor
		assert.Error(t, c.compilePath(d), d)
	}
}

func TestParseLength(t *testing.T) {
	for in, exp := range map[string]float64{
		"10":     10,
		" 10px ": 10,
		"1in":    96,
		"72pt":   96,
		"2.54cm": 96,
		"25.4mm": 96,
		"1e1":    10,
	} {
		got, err := ParseLength(in)
		require.NoError(t, err, in)
		assert.InDelta(t, exp, got, 1e-9, in)
	}
	for _, in := range []string{"", "50%", "abc", "10furlongs"} {
		_, err := ParseLength(in)
		assert.Error(t, err, in)
	}
}

func TestPlainColorRGBA(t *testing.T) {
	var c color.Color = NewPlainColor(0x80, 0x40, 0, 0x80)
	r, g, b, a := c.RGBA()
	assert.Equal(t, [4]uint32{0x8080, 0x4040, 0, 0x8080}, [4]uint32{r, g, b, a})
	assert.Equal(t, color.RGBA{0x80, 0x40, 0, 0x80}, color.RGBAModel.Convert(c))

	var p Pattern = fromNRGBA(0xff, 0, 0, 0x80)
	assert.Equal(t, color.RGBA{0x80, 0, 0, 0x80}, color.RGBAModel.Convert(p.(PlainColor)))
}

func TestParseSVGColor(t *testing.T) {
	for in, exp := range map[string]color.Color{
		"#f00":                NewPlainColor(0xff, 0, 0, 0xff),
		"#0000FF":             NewPlainColor(0, 0, 0xff, 0xff),
		"rgb(0, 128, 255)":    NewPlainColor(0, 128, 255, 0xff),
		"rgb(100%,0%,0%)":     NewPlainColor(0xff, 0, 0, 0xff),
		"Orange":              NewPlainColor(0xff, 0xa5, 0, 0xff),
		"currentColor":        NewPlainColor(0, 0, 0, 0xff),
		"rgba(0, 0, 0, 0)":    NewPlainColor(0, 0, 0, 0),
		"rgba(255,255,255,1)": NewPlainColor(0xff, 0xff, 0xff, 0xff),
	} {
		got, err := parseSVGColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, exp, got.asColor(), in)
	}

	none, err := parseSVGColor("none")
	require.NoError(t, err)
	assert.Nil(t, none.asPattern())

	for _, in := range []string{"bogus", "#12345", "rgb(1,2)"} {
		_, err := parseSVGColor(in)
		assert.Error(t, err, in)
	}
}

func TestMatrix(t *testing.T) {
	m := Identity.Translate(10, 5).Scale(2, 3)
	x, y := m.Transform(1, 1)
	assert.Equal(t, 12., x)
	assert.Equal(t, 8., y)

	x, y = Identity.Rotate(math.Pi/2).Transform(1, 0)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 1, y, 1e-12)

	assert.Equal(t, Identity.Scale(3, 3), Identity.Scale(3, 0))
}
