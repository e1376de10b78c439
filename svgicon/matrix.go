package svgicon

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D represents an SVG style matrix
// [A C E]
// [B D F]
// [0 0 1]
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity matrix
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns m multiplied by n, applying n first.
func (m Matrix2D) Mult(n Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Translate adds a translation to m
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale adds a scaling to m. A zero y factor
// means an uniform scaling by x.
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	if y == 0 {
		y = x
	}
	return m.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate adds a rotation (in radians) to m
func (m Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return m.Mult(Matrix2D{c, s, -s, c, 0, 0})
}

// SkewX skews along the x axis (angle in radians)
func (m Matrix2D) SkewX(theta float64) Matrix2D {
	return m.Mult(Matrix2D{1, 0, math.Tan(theta), 1, 0, 0})
}

// SkewY skews along the y axis (angle in radians)
func (m Matrix2D) SkewY(theta float64) Matrix2D {
	return m.Mult(Matrix2D{1, math.Tan(theta), 0, 1, 0, 0})
}

// Transform applies m to the point (x, y)
func (m Matrix2D) Transform(x, y float64) (float64, float64) {
	return x*m.A + y*m.C + m.E, x*m.B + y*m.D + m.F
}

// lineScale is the mean scaling factor of m
func (m Matrix2D) lineScale() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

func (m Matrix2D) tFixed(p fixed.Point26_6) fixed.Point26_6 {
	x, y := m.Transform(float64(p.X)/64, float64(p.Y)/64)
	return fixed.Point26_6{X: fToFixed(x), Y: fToFixed(y)}
}

func (m Matrix2D) trMove(op MoveTo) fixed.Point26_6 {
	return m.tFixed(fixed.Point26_6(op))
}

func (m Matrix2D) trLine(op LineTo) fixed.Point26_6 {
	return m.tFixed(fixed.Point26_6(op))
}

func (m Matrix2D) trQuad(op QuadTo) (fixed.Point26_6, fixed.Point26_6) {
	return m.tFixed(op[0]), m.tFixed(op[1])
}

func (m Matrix2D) trCubic(op CubicTo) (fixed.Point26_6, fixed.Point26_6, fixed.Point26_6) {
	return m.tFixed(op[0]), m.tFixed(op[1]), m.tFixed(op[2])
}

func fToFixed(f float64) fixed.Int26_6 {
	return fixed.Int26_6(f * 64)
}

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fToFixed(x), Y: fToFixed(y)}
}
