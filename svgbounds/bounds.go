// Package svgbounds measures the geometry of parsed SVG images,
// by driving the svgicon painting model with a recorder which only
// accumulates extents.
package svgbounds

import (
	"math"

	"github.com/benoitkugler/svg2png/svgicon"
	"golang.org/x/image/math/fixed"
)

// Box is an axis aligned rectangle. The zero value is empty
// and absorbed by Union.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
	valid                  bool
}

// Empty returns true if no point has been added to the box.
func (b Box) Empty() bool { return !b.valid }

// Width returns 0 for an empty box
func (b Box) Width() float64 {
	if !b.valid {
		return 0
	}
	return b.MaxX - b.MinX
}

// Height returns 0 for an empty box
func (b Box) Height() float64 {
	if !b.valid {
		return 0
	}
	return b.MaxY - b.MinY
}

// Add extends the box to include (x, y).
// Non finite coordinates are ignored.
func (b Box) Add(x, y float64) Box {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return b
	}
	if !b.valid {
		return Box{MinX: x, MinY: y, MaxX: x, MaxY: y, valid: true}
	}
	b.MinX, b.MaxX = math.Min(b.MinX, x), math.Max(b.MaxX, x)
	b.MinY, b.MaxY = math.Min(b.MinY, y), math.Max(b.MaxY, y)
	return b
}

// Union returns the smallest box containing b and o.
// Degenerate (zero width or height) boxes are kept.
func (b Box) Union(o Box) Box {
	if !o.valid {
		return b
	}
	return b.Add(o.MinX, o.MinY).Add(o.MaxX, o.MaxY)
}

// Outset grows the box by d on every side.
func (b Box) Outset(d float64) Box {
	if !b.valid {
		return b
	}
	return Box{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d, valid: true}
}

var _ svgicon.Driver = (*Recorder)(nil)

// Recorder is a svgicon.Driver accumulating the extent of the
// painted paths. Stroked paths are expanded by half their line width.
type Recorder struct {
	path pather
	box  Box
}

// Box returns the extent of all the paths drawn so far.
func (r *Recorder) Box() Box { return r.box }

// SetupDrawers implements svgicon.Driver. A path both filled and
// stroked is only measured once, as a stroke.
func (r *Recorder) SetupDrawers(willFill, willStroke bool) (svgicon.Filler, svgicon.Stroker) {
	r.path.owner = r
	switch {
	case willStroke:
		return nil, &r.path
	case willFill:
		return &r.path, nil
	}
	return nil, nil
}

// pather tracks the current point and the extent of the current path
type pather struct {
	owner     *Recorder
	current   fixed.Point26_6
	box       Box
	halfWidth float64
}

func (p *pather) Clear() {
	p.box = Box{}
	p.halfWidth = 0
}

func (p *pather) Start(a fixed.Point26_6) {
	p.current = a
	p.box = p.box.Add(fixedTof(a))
}

func (p *pather) Line(b fixed.Point26_6) {
	p.box = p.box.Union(computeBoundingBox(line{p.current, b}))
	p.current = b
}

func (p *pather) QuadBezier(b, c fixed.Point26_6) {
	p.box = p.box.Union(computeBoundingBox(quadBezier{p.current, b, c}))
	p.current = c
}

func (p *pather) CubeBezier(b, c, d fixed.Point26_6) {
	p.box = p.box.Union(computeBoundingBox(cubicBezier{p.current, b, c, d}))
	p.current = d
}

func (p *pather) Stop(bool) {}

func (p *pather) SetColor(svgicon.Pattern, float64) {}

func (p *pather) SetWinding(bool) {}

func (p *pather) SetStrokeOptions(options svgicon.StrokeOptions) {
	p.halfWidth = float64(options.LineWidth) / 128
}

// Draw commits the current path to the recorder
func (p *pather) Draw() {
	p.owner.box = p.owner.box.Union(p.box.Outset(p.halfWidth))
	p.Clear()
}

// Measure returns the extent of the icon geometry, in the
// coordinates given by the icon Transform.
func Measure(icon *svgicon.SvgIcon) Box {
	var rec Recorder
	icon.Draw(&rec, 1)
	return rec.Box()
}
