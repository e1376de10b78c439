package svgicon

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Pattern groups the paints accepted for fill and stroke.
// It is either a PlainColor or a Gradient.
type Pattern interface {
	isPattern()
}

// PlainColor is an opaque or translucent uniform paint.
type PlainColor struct {
	c color.RGBA // alpha premultiplied
}

func (PlainColor) isPattern() {}

// RGBA implements color.Color.
func (p PlainColor) RGBA() (r, g, b, a uint32) { return p.c.RGBA() }

// NewPlainColor returns a PlainColor from its components.
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{c: color.RGBA{R: r, G: g, B: b, A: a}}
}

// fromNRGBA premultiplies the color components
func fromNRGBA(r, g, b, a uint8) PlainColor {
	c := color.RGBAModel.Convert(color.NRGBA{R: r, G: g, B: b, A: a}).(color.RGBA)
	return PlainColor{c: c}
}

// optionnalColor is the result of parsing a paint value:
// a nil color stands for "none".
type optionnalColor struct {
	valid bool
	color PlainColor
}

// asPattern returns nil for "none"
func (o optionnalColor) asPattern() Pattern {
	if !o.valid {
		return nil
	}
	return o.color
}

// asColor returns a transparent color for "none"
func (o optionnalColor) asColor() color.Color {
	if !o.valid {
		return color.Transparent
	}
	return o.color
}

var errInvalidColor = errors.New("invalid color")

// parseSVGColor parses a paint value: named colors, #rgb, #rrggbb,
// rgb(), rgba() and "none". "currentColor" is resolved as black.
func parseSVGColor(colorStr string) (optionnalColor, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	switch v {
	case "none", "transparent", "":
		return optionnalColor{}, nil
	case "currentcolor", "inherit":
		return optionnalColor{valid: true, color: NewPlainColor(0, 0, 0, 0xff)}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return optionnalColor{valid: true, color: PlainColor{c: c}}, nil
	}
	switch {
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v[1:])
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		return parseRGBFunc(v)
	}
	return optionnalColor{}, fmt.Errorf("%w: %q", errInvalidColor, colorStr)
}

func parseHexColor(hex string) (optionnalColor, error) {
	switch len(hex) {
	case 3, 4: // #rgb, #rgba
		expanded := make([]byte, 0, 2*len(hex))
		for i := 0; i < len(hex); i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	case 6, 8:
	default:
		return optionnalColor{}, fmt.Errorf("%w: #%s", errInvalidColor, hex)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return optionnalColor{}, fmt.Errorf("%w: #%s", errInvalidColor, hex)
	}
	return optionnalColor{valid: true, color: fromNRGBA(uint8(n>>24), uint8(n>>16), uint8(n>>8), uint8(n))}, nil
}

func parseRGBFunc(v string) (optionnalColor, error) {
	start, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if end < start {
		return optionnalColor{}, fmt.Errorf("%w: %q", errInvalidColor, v)
	}
	args := splitOnCommaOrSpace(strings.ReplaceAll(v[start+1:end], "/", " "))
	if len(args) != 3 && len(args) != 4 {
		return optionnalColor{}, fmt.Errorf("%w: %q", errInvalidColor, v)
	}
	var comps [4]uint8
	comps[3] = 0xff
	for i, arg := range args {
		f, err := readFraction(arg)
		if err != nil {
			return optionnalColor{}, err
		}
		switch {
		case i == 3: // alpha is always a fraction
			f *= 255
		case strings.HasSuffix(arg, "%"):
			f *= 255
		}
		comps[i] = clampUint8(f)
	}
	return optionnalColor{valid: true, color: fromNRGBA(comps[0], comps[1], comps[2], comps[3])}, nil
}

func clampUint8(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f + 0.5)
}
