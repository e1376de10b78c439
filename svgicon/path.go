package svgicon

import "golang.org/x/image/math/fixed"

// Operation is one command of a compiled path: MoveTo, LineTo,
// QuadTo, CubicTo or Close.
type Operation interface {
	// drawTo sends the command, transformed by M, to d
	drawTo(d Drawer, M Matrix2D)
}

type (
	MoveTo  fixed.Point26_6    // starts a new sub-path
	LineTo  fixed.Point26_6    // straight segment
	QuadTo  [2]fixed.Point26_6 // control, end
	CubicTo [3]fixed.Point26_6 // control 1, control 2, end
	Close   struct{}           // closes the current sub-path
)

func (op MoveTo) drawTo(d Drawer, M Matrix2D) {
	d.Stop(false) // a move ends the previous sub-path, open
	d.Start(M.trMove(op))
}

func (op LineTo) drawTo(d Drawer, M Matrix2D) { d.Line(M.trLine(op)) }

func (op QuadTo) drawTo(d Drawer, M Matrix2D) {
	ctrl, end := M.trQuad(op)
	d.QuadBezier(ctrl, end)
}

func (op CubicTo) drawTo(d Drawer, M Matrix2D) {
	c1, c2, end := M.trCubic(op)
	d.CubeBezier(c1, c2, end)
}

func (Close) drawTo(d Drawer, _ Matrix2D) { d.Stop(true) }

// Path is a compiled outline. Shapes (rect, circle, ...) are compiled
// to paths as well. Path implements the Drawer methods used to build it.
type Path []Operation

// Clear empties the path, keeping its capacity.
func (p *Path) Clear() {
	*p = (*p)[:0]
}

func (p *Path) Start(a fixed.Point26_6) { *p = append(*p, MoveTo(a)) }

func (p *Path) Line(b fixed.Point26_6) { *p = append(*p, LineTo(b)) }

func (p *Path) QuadBezier(ctrl, end fixed.Point26_6) { *p = append(*p, QuadTo{ctrl, end}) }

func (p *Path) CubeBezier(c1, c2, end fixed.Point26_6) { *p = append(*p, CubicTo{c1, c2, end}) }

// Stop ends the current sub-path, appending a Close if closeLoop is set.
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}
