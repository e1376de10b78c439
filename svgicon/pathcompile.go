package svgicon

import (
	"fmt"
	"math"

	"golang.org/x/image/math/fixed"
)

// pathCursor compiles the "d" attribute of path elements
// and the shapes into Path operations.
type pathCursor struct {
	path                   Path
	points                 []float64
	placeX, placeY         float64 // current point
	curX, curY             float64 // offset applied by <use>
	cntlPtX, cntlPtY       float64 // last control point, for S and T
	pathStartX, pathStartY float64
	lastKey                uint8
	inPath                 bool
}

func (c *pathCursor) init() {
	c.placeX, c.placeY = 0, 0
	c.pathStartX, c.pathStartY = 0, 0
	c.points = c.points[:0]
	c.lastKey = ' '
	c.path.Clear()
	c.inPath = false
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// getPoints reads a list of numbers separated by commas, spaces or
// sign characters. Compact forms such as "1.5.5" (two numbers) are accepted.
func (c *pathCursor) getPoints(dataPoints string) error {
	c.points = c.points[:0]
	s := dataPoints
	for i := 0; i < len(s); {
		switch s[i] {
		case ' ', ',', '\t', '\n', '\r':
			i++
			continue
		}
		start := i
		if s[i] == '+' || s[i] == '-' {
			i++
		}
		sawDigit, sawDot := false, false
	number:
		for i < len(s) {
			switch {
			case isDigit(s[i]):
				sawDigit = true
			case s[i] == '.' && !sawDot:
				sawDot = true
			default:
				break number
			}
			i++
		}
		if !sawDigit {
			return fmt.Errorf("%w: unexpected %q in %q", errParamMismatch, s[start:min(i+1, len(s))], dataPoints)
		}
		if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
			j := i + 1
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
			k := j
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			if k > j {
				i = k
			}
		}
		f, err := parseFloat(s[start:i], 64)
		if err != nil {
			return err
		}
		c.points = append(c.points, f)
	}
	return nil
}

// compilePath translates the svgPath description string into a path.
// The resulting path element is stored in the pathCursor.
func (c *pathCursor) compilePath(svgPath string) error {
	c.init()
	lastIndex := -1
	for i := 0; i < len(svgPath); i++ {
		ch := svgPath[i]
		if isCommand(ch) {
			if lastIndex != -1 {
				if err := c.addSeg(svgPath[lastIndex:i]); err != nil {
					return err
				}
			}
			lastIndex = i
		}
	}
	if lastIndex != -1 {
		if err := c.addSeg(svgPath[lastIndex:]); err != nil {
			return err
		}
	}
	return nil
}

func isCommand(ch byte) bool {
	switch ch | 0x20 { // lower case
	case 'm', 'z', 'l', 'h', 'v', 'c', 's', 'q', 't', 'a':
		return true
	}
	return false
}

// pt returns the fixed point for user coordinates (x, y),
// shifted by the current <use> offset.
func (c *pathCursor) pt(x, y float64) fixed.Point26_6 {
	return toFixedP(x+c.curX, y+c.curY)
}

// ensureStart opens a sub path at the current point if needed
func (c *pathCursor) ensureStart() {
	if !c.inPath {
		c.path.Start(c.pt(c.placeX, c.placeY))
		c.pathStartX, c.pathStartY = c.placeX, c.placeY
		c.inPath = true
	}
}

func (c *pathCursor) reflectControl(keys string) (float64, float64) {
	for i := 0; i < len(keys); i++ {
		if c.lastKey == keys[i] {
			return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
		}
	}
	return c.placeX, c.placeY
}

// addSeg decodes an individual path command
func (c *pathCursor) addSeg(segString string) error {
	if err := c.getPoints(segString[1:]); err != nil {
		return err
	}
	l := len(c.points)
	k := segString[0]
	rel := k >= 'a'
	if rel {
		k -= 'a' - 'A'
	}
	var offX, offY float64
	if rel {
		offX, offY = c.placeX, c.placeY
	}
	switch k {
	case 'Z':
		if l != 0 {
			return errParamMismatch
		}
		if c.inPath {
			c.path.Stop(true)
			c.placeX, c.placeY = c.pathStartX, c.pathStartY
			c.inPath = false
		}
	case 'M':
		if l < 2 || l%2 != 0 {
			return errParamMismatch
		}
		c.placeX, c.placeY = c.points[0]+offX, c.points[1]+offY
		c.pathStartX, c.pathStartY = c.placeX, c.placeY
		c.path.Start(c.pt(c.placeX, c.placeY))
		c.inPath = true
		for i := 2; i < l-1; i += 2 { // implicit line to
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.placeX, c.placeY = c.points[i]+offX, c.points[i+1]+offY
			c.path.Line(c.pt(c.placeX, c.placeY))
		}
		if l > 2 {
			k = 'L'
		}
	case 'L':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for i := 0; i < l-1; i += 2 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.placeX, c.placeY = c.points[i]+offX, c.points[i+1]+offY
			c.path.Line(c.pt(c.placeX, c.placeY))
		}
	case 'H':
		if l == 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for _, x := range c.points {
			if rel {
				offX = c.placeX
			}
			c.placeX = x + offX
			c.path.Line(c.pt(c.placeX, c.placeY))
		}
	case 'V':
		if l == 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for _, y := range c.points {
			if rel {
				offY = c.placeY
			}
			c.placeY = y + offY
			c.path.Line(c.pt(c.placeX, c.placeY))
		}
	case 'C':
		if l == 0 || l%6 != 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for i := 0; i < l-5; i += 6 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			x1, y1 := c.points[i]+offX, c.points[i+1]+offY
			c.cntlPtX, c.cntlPtY = c.points[i+2]+offX, c.points[i+3]+offY
			c.placeX, c.placeY = c.points[i+4]+offX, c.points[i+5]+offY
			c.path.CubeBezier(c.pt(x1, y1), c.pt(c.cntlPtX, c.cntlPtY), c.pt(c.placeX, c.placeY))
		}
	case 'S':
		if l == 0 || l%4 != 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for i := 0; i < l-3; i += 4 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			x1, y1 := c.reflectControl("CS")
			c.cntlPtX, c.cntlPtY = c.points[i]+offX, c.points[i+1]+offY
			c.placeX, c.placeY = c.points[i+2]+offX, c.points[i+3]+offY
			c.path.CubeBezier(c.pt(x1, y1), c.pt(c.cntlPtX, c.cntlPtY), c.pt(c.placeX, c.placeY))
			c.lastKey = 'S'
		}
	case 'Q':
		if l == 0 || l%4 != 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for i := 0; i < l-3; i += 4 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.cntlPtX, c.cntlPtY = c.points[i]+offX, c.points[i+1]+offY
			c.placeX, c.placeY = c.points[i+2]+offX, c.points[i+3]+offY
			c.path.QuadBezier(c.pt(c.cntlPtX, c.cntlPtY), c.pt(c.placeX, c.placeY))
		}
	case 'T':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for i := 0; i < l-1; i += 2 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.cntlPtX, c.cntlPtY = c.reflectControl("QT")
			c.placeX, c.placeY = c.points[i]+offX, c.points[i+1]+offY
			c.path.QuadBezier(c.pt(c.cntlPtX, c.cntlPtY), c.pt(c.placeX, c.placeY))
			c.lastKey = 'T'
		}
	case 'A':
		if l == 0 || l%7 != 0 {
			return errParamMismatch
		}
		c.ensureStart()
		for i := 0; i < l-6; i += 7 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.arcTo(c.points[i:i+5], c.points[i+5]+offX, c.points[i+6]+offY)
		}
	default:
		return fmt.Errorf("%w: %q", errCommandUnknown, k)
	}
	c.lastKey = k
	return nil
}

// arcTo draws an elliptical arc from the current point to (x, y).
// params holds rx, ry, x-axis-rotation, large-arc-flag and sweep-flag.
func (c *pathCursor) arcTo(params []float64, x, y float64) {
	rx, ry := math.Abs(params[0]), math.Abs(params[1])
	if rx == 0 || ry == 0 || (x == c.placeX && y == c.placeY) {
		c.placeX, c.placeY = x, y
		c.path.Line(c.pt(x, y))
		return
	}
	rot := params[2] * math.Pi / 180
	large, sweep := params[3] != 0, params[4] != 0
	cx, cy := findEllipseCenter(&rx, &ry, rot, c.placeX, c.placeY, x, y, sweep, !large)
	arc := []float64{rx, ry, params[2], params[3], params[4], x + c.curX, y + c.curY}
	c.path.addArc(arc, cx+c.curX, cy+c.curY, c.placeX+c.curX, c.placeY+c.curY)
	c.placeX, c.placeY = x, y
}

// ellipseAt adds a closed ellipse centered at (cx, cy)
func (c *pathCursor) ellipseAt(cx, cy, rx, ry float64) {
	c.placeX, c.placeY = cx+rx, cy
	c.points = append(c.points[:0], rx, ry, 0.0, 1.0, 0.0, c.placeX, c.placeY)
	c.path.Start(toFixedP(c.placeX, c.placeY))
	c.placeX, c.placeY = c.path.addArc(c.points, cx, cy, c.placeX, c.placeY)
	c.path.Stop(true)
}
