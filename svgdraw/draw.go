// Package svgdraw implements the svgconv.Backend with the software
// renderer of this module: documents are parsed by svgicon, measured
// by svgbounds and painted by svgraster.
//
// Dimension resolution works on a lenient HTML parse of the markup, so
// that malformed documents still report their attributes; painting
// requires well formed XML.
package svgdraw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/svg2png/svgbounds"
	"github.com/benoitkugler/svg2png/svgconv"
	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/benoitkugler/svg2png/svgraster"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ svgconv.Backend = Backend{}

// Backend parses and paints SVG documents in process.
type Backend struct {
	// ErrorMode applies to painting: in StrictErrorMode, unsupported
	// elements make Rasterize fail. Measuring always ignores them.
	ErrorMode svgicon.ErrorMode
	Logger    *slog.Logger // defaults to slog.Default()
}

func (b Backend) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

var errNoSVG = errors.New("svgdraw: no svg element")

// ParseDocument implements svgconv.Backend, following the HTML5
// parsing algorithm: it only fails when no <svg> element is found.
func (b Backend) ParseDocument(markup string) (svgconv.Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("svgdraw: %w", err)
	}
	svg := findSVG(root)
	if svg == nil {
		return nil, errNoSVG
	}
	return &Document{node: svg, markup: markup, logger: b.logger()}, nil
}

// Rasterize implements svgconv.Backend. A document without view box
// is painted on the area going from the origin to the end of its
// geometry, or to its width and height attributes.
func (b Backend) Rasterize(ctx context.Context, img svgconv.EmbeddableImage, width, height int) (image.Image, error) {
	markup, err := img.Markup()
	if err != nil {
		return nil, fmt.Errorf("svgdraw: %w", err)
	}
	icon, err := svgicon.Parser{ErrorMode: b.ErrorMode, Logger: b.logger()}.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("svgdraw: %w", err)
	}
	vb := viewport(icon)
	if !(vb.W > 0 && vb.H > 0) {
		return nil, errors.New("svgdraw: empty document")
	}
	icon.ViewBox = vb

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := svgraster.Rasterize(ctx, icon, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// viewport returns the view box of the icon, completing the missing
// dimensions with the extent of its geometry from the origin.
func viewport(icon *svgicon.SvgIcon) svgicon.Bounds {
	vb := icon.ViewBox
	if vb.W > 0 && vb.H > 0 {
		return vb
	}
	box := svgbounds.Measure(icon)
	vb.X, vb.Y = 0, 0
	if !(vb.W > 0) {
		vb.W = math.Max(box.MaxX, 0)
	}
	if !(vb.H > 0) {
		vb.H = math.Max(box.MaxY, 0)
	}
	return vb
}

func findSVG(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Svg || n.Data == "svg") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSVG(c); found != nil {
			return found
		}
	}
	return nil
}

// Document is the root <svg> element of a leniently parsed document.
type Document struct {
	node   *html.Node
	markup string
	logger *slog.Logger

	measureErr error // set by Measure
}

var _ svgconv.MeasureErrorer = (*Document)(nil)

// MeasureError implements svgconv.MeasureErrorer: it returns the
// parsing error met by the last call to Measure.
func (d *Document) MeasureError() error { return d.measureErr }

func (d *Document) attr(name string) (string, bool) {
	for _, a := range d.node.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// ViewBox implements svgconv.Document. The box is returned when made
// of four finite numbers, even if its size is not positive.
func (d *Document) ViewBox() (svgconv.Box, bool) {
	v, ok := d.attr("viewBox")
	if !ok {
		return svgconv.Box{}, false
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return svgconv.Box{}, false
	}
	var nums [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return svgconv.Box{}, false
		}
		nums[i] = n
	}
	return svgconv.Box{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, true
}

// length returns the value of an absolute, positive length attribute
func (d *Document) length(name string) float64 {
	v, ok := d.attr(name)
	if !ok {
		return 0
	}
	l, err := svgicon.ParseLength(v)
	if err != nil || l <= 0 {
		return 0
	}
	return l
}

// Measure implements svgconv.Document. The width and height attributes
// are used when they hold absolute lengths; otherwise the document
// geometry is measured, which requires well formed markup.
func (d *Document) Measure() (width, height float64) {
	d.measureErr = nil
	width, height = d.length("width"), d.length("height")
	if width > 0 && height > 0 {
		return width, height
	}
	icon, err := svgicon.Parser{ErrorMode: svgicon.IgnoreErrorMode, Logger: d.logger}.Parse(strings.NewReader(d.markup))
	if err != nil {
		d.logger.Debug("document can't be measured", "err", err)
		d.measureErr = err
		return width, height
	}
	box := svgbounds.Measure(icon)
	if width <= 0 {
		width = math.Max(box.MaxX, 0)
	}
	if height <= 0 {
		height = math.Max(box.MaxY, 0)
	}
	return width, height
}
