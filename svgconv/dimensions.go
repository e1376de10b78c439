package svgconv

import (
	"fmt"
	"math"
)

// IntrinsicSize is the natural size of a document, in user units.
type IntrinsicSize struct {
	Width, Height float64
}

// Valid returns true if both dimensions are positive and finite.
func (s IntrinsicSize) Valid() bool {
	return validLength(s.Width) && validLength(s.Height)
}

func (s IntrinsicSize) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

func validLength(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Method tells how the intrinsic size was obtained.
type Method uint8

const (
	// FromViewBox means the size is the viewBox width and height.
	FromViewBox Method = iota + 1
	// FromMeasure means the document was laid out and measured.
	FromMeasure
)

func (m Method) String() string {
	switch m {
	case FromViewBox:
		return "viewBox"
	case FromMeasure:
		return "measured"
	default:
		return "unknown"
	}
}

// Dimensions is the result of a size resolution.
type Dimensions struct {
	IntrinsicSize
	// ViewBox is the viewBox of the document when HasViewBox is true,
	// or the measured box (anchored at the origin) otherwise.
	ViewBox    Box
	HasViewBox bool
	Method     Method
}

// Resolver computes the intrinsic size of documents.
type Resolver struct {
	backend Backend
}

// NewResolver returns a resolver parsing documents with backend.
func NewResolver(backend Backend) *Resolver {
	return &Resolver{backend: backend}
}

// Resolve parses markup leniently and returns its intrinsic size:
// a valid viewBox wins, regardless of any width or height attribute;
// otherwise the document is measured. A zero or non finite result
// is an error wrapping ErrUnresolvableDimensions, and also a
// *DecodeError when the geometry could not be decoded.
func (r *Resolver) Resolve(markup string) (Dimensions, error) {
	doc, err := r.backend.ParseDocument(markup)
	if err != nil {
		return Dimensions{}, unresolvable("%v", err)
	}
	return ResolveDocument(doc)
}

// ResolveDocument applies the resolution rules on an already parsed document.
func ResolveDocument(doc Document) (Dimensions, error) {
	if vb, ok := doc.ViewBox(); ok && validLength(vb.W) && validLength(vb.H) {
		return Dimensions{
			IntrinsicSize: IntrinsicSize{Width: vb.W, Height: vb.H},
			ViewBox:       vb,
			HasViewBox:    true,
			Method:        FromViewBox,
		}, nil
	}
	w, h := doc.Measure()
	size := IntrinsicSize{Width: w, Height: h}
	if !size.Valid() {
		if m, ok := doc.(MeasureErrorer); ok {
			if err := m.MeasureError(); err != nil {
				return Dimensions{}, fmt.Errorf("svgconv: %w: %w", ErrUnresolvableDimensions, &DecodeError{Err: err})
			}
		}
		return Dimensions{}, unresolvable("measured size %s", size)
	}
	return Dimensions{
		IntrinsicSize: size,
		ViewBox:       Box{W: w, H: h},
		Method:        FromMeasure,
	}, nil
}
