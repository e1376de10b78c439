package svgconv

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"math"
	"time"
)

// maxOutputPixels protects the process against surfaces it could not allocate,
// such as a very tall document at a large scale.
const maxOutputPixels = 1 << 28

// RasterResult is a rendered PNG. It is never mutated once built.
type RasterResult struct {
	PNG                       []byte
	OutputWidth, OutputHeight int
	Intrinsic                 IntrinsicSize
	Scale                     int
}

// DataURL returns the PNG as a data URI, usable as an image source.
func (r RasterResult) DataURL() string {
	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(r.PNG)
}

// OutputSize returns the pixel size of a document rendered at scale:
// each dimension is rounded, and at least 1 pixel. Dimensions above the
// surface limit saturate at maxOutputPixels+1, so they never overflow an int.
func OutputSize(size IntrinsicSize, scale int) (width, height int) {
	return pixels(size.Width * float64(scale)), pixels(size.Height * float64(scale))
}

func pixels(v float64) int {
	v = math.Round(v)
	if !(v <= maxOutputPixels) { // NaN included
		return maxOutputPixels + 1
	}
	return max(int(v), 1)
}

// Rasterizer renders documents to PNG with a Backend.
type Rasterizer struct {
	backend  Backend
	resolver *Resolver
	logger   *slog.Logger
}

// NewRasterizer returns a rasterizer using backend both to resolve sizes
// and to paint. A nil logger defaults to slog.Default().
func NewRasterizer(backend Backend, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rasterizer{backend: backend, resolver: NewResolver(backend), logger: logger}
}

// Render resolves the intrinsic size of markup and renders it at scale.
// Scales below 1 are treated as 1.
func (r *Rasterizer) Render(ctx context.Context, markup string, scale int) (RasterResult, error) {
	dims, err := r.resolver.Resolve(markup)
	if err != nil {
		return RasterResult{}, err
	}
	return r.RenderSize(ctx, markup, dims.IntrinsicSize, scale)
}

// RenderSize renders markup at scale, for an already resolved size.
// Failures of the backend are returned as *DecodeError, unless ctx is done.
func (r *Rasterizer) RenderSize(ctx context.Context, markup string, size IntrinsicSize, scale int) (RasterResult, error) {
	if !size.Valid() {
		return RasterResult{}, unresolvable("size %s", size)
	}
	scale = max(scale, 1)
	w, h := OutputSize(size, scale)
	if int64(w)*int64(h) > maxOutputPixels {
		return RasterResult{}, &DecodeError{Err: fmt.Errorf("surface for %s at scale %d is too large", size, scale)}
	}

	start := time.Now()
	surface, err := r.backend.Rasterize(ctx, NewEmbeddableImage(markup), w, h)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return RasterResult{}, err
		}
		return RasterResult{}, &DecodeError{Err: err}
	}
	if b := surface.Bounds(); b.Dx() != w || b.Dy() != h {
		return RasterResult{}, &DecodeError{Err: fmt.Errorf("surface is %dx%d, expected %dx%d", b.Dx(), b.Dy(), w, h)}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface); err != nil {
		return RasterResult{}, &DecodeError{Err: fmt.Errorf("encoding png: %w", err)}
	}
	r.logger.Debug("rendered", "width", w, "height", h, "scale", scale, "bytes", buf.Len(), "elapsed", time.Since(start))
	return RasterResult{
		PNG:          buf.Bytes(),
		OutputWidth:  w,
		OutputHeight: h,
		Intrinsic:    size,
		Scale:        scale,
	}, nil
}
