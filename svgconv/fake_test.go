package svgconv

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// fakeDoc is a Document with fixed answers.
type fakeDoc struct {
	viewBox       Box
	hasViewBox    bool
	width, height float64
	measureErr    error
}

func (d fakeDoc) ViewBox() (Box, bool)        { return d.viewBox, d.hasViewBox }
func (d fakeDoc) Measure() (float64, float64) { return d.width, d.height }
func (d fakeDoc) MeasureError() error         { return d.measureErr }

var (
	reViewBox = regexp.MustCompile(`viewBox="([^"]*)"`)
	reWidth   = regexp.MustCompile(`\swidth="([^"]*)"`)
	reHeight  = regexp.MustCompile(`\sheight="([^"]*)"`)
)

// fakeBackend understands the viewBox, width and height attributes of
// the markup, and fails to rasterize documents without a closing </svg>.
// Renders whose output width has a gate block until the gate is closed.
type fakeBackend struct {
	mu      sync.Mutex
	gates   map[int]chan struct{}
	started []int // output widths, in call order
}

func (b *fakeBackend) gate(width int) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gates == nil {
		b.gates = make(map[int]chan struct{})
	}
	g := make(chan struct{})
	b.gates[width] = g
	return g
}

func (b *fakeBackend) startedWidths() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.started...)
}

func (b *fakeBackend) ParseDocument(markup string) (Document, error) {
	if !strings.Contains(markup, "<svg") {
		return nil, errors.New("no svg element")
	}
	var doc fakeDoc
	if m := reViewBox.FindStringSubmatch(markup); m != nil {
		fields := strings.Fields(strings.ReplaceAll(m[1], ",", " "))
		if len(fields) == 4 {
			var nums [4]float64
			ok := true
			for i, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				ok = ok && err == nil
				nums[i] = v
			}
			doc.viewBox, doc.hasViewBox = Box{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, ok
		}
	}
	if m := reWidth.FindStringSubmatch(markup); m != nil {
		doc.width, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := reHeight.FindStringSubmatch(markup); m != nil {
		doc.height, _ = strconv.ParseFloat(m[1], 64)
	}
	return doc, nil
}

func (b *fakeBackend) Rasterize(ctx context.Context, img EmbeddableImage, width, height int) (image.Image, error) {
	markup, err := img.Markup()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.started = append(b.started, width)
	gate := b.gates[width]
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !strings.Contains(string(markup), "</svg>") {
		return nil, errors.New("unclosed svg element")
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{R: 0xff, A: 0xff}), image.Point{}, draw.Src)
	return dst, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	svgWide      = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`
	svgMalformed = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100"`
)
