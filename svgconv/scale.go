package svgconv

import "math"

const (
	// MaxOutputWidth bounds the width of the rendered PNG, in pixels.
	MaxOutputWidth = 3000
	// DefaultScale is the scale used before any user choice.
	DefaultScale = 2
	// DefaultMaxScale is the maximum scale before any document is loaded.
	DefaultMaxScale = 10
)

// ScaleState is the current integer scale and its upper bound.
// 1 <= Current <= Max always holds for states built by this package.
type ScaleState struct {
	Current, Max int
}

// NewScaleState returns a state with the given bound and initial
// value, clamped.
func NewScaleState(bound, initial int) ScaleState {
	if bound < 1 {
		bound = DefaultMaxScale
	}
	return ScaleState{Max: bound}.WithScale(initial)
}

// WithScale returns the state with Current set to n clamped into [1, Max].
func (s ScaleState) WithScale(n int) ScaleState {
	if s.Max < 1 {
		s.Max = 1
	}
	s.Current = min(max(n, 1), s.Max)
	return s
}

// WithIntrinsicWidth recomputes Max as floor(maxOutputWidth / width),
// at least 1, and clamps Current.
func (s ScaleState) WithIntrinsicWidth(maxOutputWidth int, width float64) ScaleState {
	if maxOutputWidth <= 0 {
		maxOutputWidth = MaxOutputWidth
	}
	s.Max = 1
	if validLength(width) {
		m := math.Floor(float64(maxOutputWidth) / width)
		switch {
		case m > math.MaxInt32:
			s.Max = math.MaxInt32
		case m > 1:
			s.Max = int(m)
		}
	}
	return s.WithScale(s.Current)
}

// ScaleController holds the scale of a conversion.
// It is not safe for concurrent use.
type ScaleController struct {
	maxOutputWidth int
	state          ScaleState
}

// NewScaleController returns a controller bounding output widths to
// maxOutputWidth (MaxOutputWidth if not positive), starting at initial.
// Until an intrinsic width is known, the scale is bounded by DefaultMaxScale.
func NewScaleController(maxOutputWidth, initial int) *ScaleController {
	if maxOutputWidth <= 0 {
		maxOutputWidth = MaxOutputWidth
	}
	return &ScaleController{
		maxOutputWidth: maxOutputWidth,
		state:          NewScaleState(DefaultMaxScale, initial),
	}
}

// SetIntrinsicWidth updates the bound for a new document width.
func (c *ScaleController) SetIntrinsicWidth(width float64) ScaleState {
	c.state = c.state.WithIntrinsicWidth(c.maxOutputWidth, width)
	return c.state
}

// SetScale clamps n into the valid range and returns the value retained.
func (c *ScaleController) SetScale(n int) int {
	c.state = c.state.WithScale(n)
	return c.state.Current
}

// State returns the current scale and its bound.
func (c *ScaleController) State() ScaleState { return c.state }
