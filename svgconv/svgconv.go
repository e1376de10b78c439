// Package svgconv converts SVG documents to PNG images at a chosen integer
// scale.
//
// The conversion is split in small components: a Loader reading the source
// text, a Resolver computing the intrinsic size of the document, a
// ScaleController bounding the scale so that the output stays below a maximum
// width, a Rasterizer producing the PNG and an Exporter saving it.
// A Session wires them around a single event loop, whose state transitions
// are described by the pure function Apply.
//
// Parsing and painting are delegated to a Backend, so that the pipeline
// can be driven by fakes in tests; see package svgdraw for the software
// implementation.
package svgconv

import (
	"context"
	"image"
)

// Box is a rectangle in user units, such as a viewBox.
type Box struct {
	X, Y, W, H float64
}

// Document is a leniently parsed SVG document.
type Document interface {
	// ViewBox returns the viewBox attribute of the root element,
	// if present and made of four numbers.
	ViewBox() (Box, bool)
	// Measure returns the rendered size of the document when laid out
	// without viewBox constraint. Zero values mean the size is unknown.
	Measure() (width, height float64)
}

// MeasureErrorer may be implemented by a Document to report why
// Measure returned zero values, typically malformed markup.
type MeasureErrorer interface {
	MeasureError() error
}

// Backend provides the two capabilities the pipeline needs:
// parsing markup into a document, and decoding an embedded SVG image
// onto a pixel surface.
type Backend interface {
	ParseDocument(markup string) (Document, error)
	// Rasterize decodes img and draws it on a surface of exactly
	// width x height pixels. It returns an error when the image can't be decoded.
	Rasterize(ctx context.Context, img EmbeddableImage, width, height int) (image.Image, error)
}
