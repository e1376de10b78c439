package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/benoitkugler/svg2png/internal/iterm2"
	"github.com/benoitkugler/svg2png/svgconv"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// assumed cell width, in pixels, when the terminal can't be queried
	cellWidth           = 8
	defaultPreviewWidth = 640
)

// console prints the session state on the terminal.
// update runs on the session loop, the other methods on the caller goroutine.
type console struct {
	out          *termenv.Output
	w            io.Writer
	preview      bool
	previewWidth int

	lastResult *svgconv.RasterResult
	lastErr    error
	lastToken  uint64
}

// newConsole prints on f. When tty is not nil and is a terminal, it is
// queried for its cell size to fit the preview; it must not be read
// concurrently meanwhile.
func newConsole(f, tty *os.File, preview bool) *console {
	c := &console{
		out: termenv.NewOutput(f),
		w:   f,
	}
	if preview {
		if iterm2.IsCompatible() {
			c.preview = true
			c.previewWidth = previewWidth(f, tty)
		} else {
			slog.Warn("preview needs a terminal supporting the iTerm2 image protocol")
		}
	}
	return c
}

// previewWidth returns the width available for images, in pixels
func previewWidth(f, tty *os.File) int {
	if tty != nil && term.IsTerminal(int(tty.Fd())) {
		res, err := iterm2.PixelResolution(tty)
		if err == nil && res.Width > 0 {
			return res.Width
		}
		slog.Debug("querying terminal resolution", "err", err)
	}
	return terminalWidth(f)
}

// terminalWidth estimates the width of the terminal attached to f,
// in pixels, from its number of columns.
func terminalWidth(f *os.File) int {
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return defaultPreviewWidth
	}
	return cols * cellWidth
}

func (c *console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *console) errorf(format string, args ...any) {
	msg := c.out.String(fmt.Sprintf(format, args...)).Foreground(c.out.Color("1"))
	fmt.Fprintln(c.out, msg.String())
}

func (c *console) update(st svgconv.State) {
	if st.Err != nil && st.Err != c.lastErr {
		c.errorf("%v", st.Err)
	}
	c.lastErr = st.Err

	if st.Pending.Token != 0 && st.Pending.Token != c.lastToken {
		c.lastToken = st.Pending.Token
		fmt.Fprintln(c.out, c.out.String(sourceLine(st)).Faint().String())
	}
	if st.Result == nil || st.Result == c.lastResult {
		return
	}
	c.lastResult = st.Result
	fmt.Fprintln(c.out, c.out.String(resultLine(st)).Foreground(c.out.Color("2")).String())
	if c.preview {
		if err := c.show(*st.Result, st.ResultName); err != nil {
			slog.Warn("preview", "err", err)
		}
	}
}

// sourceLine describes the document being rendered
func sourceLine(st svgconv.State) string {
	d := st.Dimensions
	s := fmt.Sprintf("rendering %s: intrinsic size %s (%s)", st.Source.Name, d.IntrinsicSize, d.Method)
	if d.HasViewBox {
		s += fmt.Sprintf(", viewBox: %g %g %g %g", d.ViewBox.X, d.ViewBox.Y, d.ViewBox.W, d.ViewBox.H)
	}
	return s + fmt.Sprintf(", scale %d/%d", st.Scale.Current, st.Scale.Max)
}

// resultLine describes the last rendered image
func resultLine(st svgconv.State) string {
	r := st.Result
	return fmt.Sprintf("%s: %dx%d px at scale %d, %s", st.ResultName, r.OutputWidth, r.OutputHeight, r.Scale, byteSize(len(r.PNG)))
}

func byteSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// show writes the result inline, downscaled to the terminal width
func (c *console) show(res svgconv.RasterResult, name string) error {
	if res.OutputWidth <= c.previewWidth {
		return iterm2.PNG(c.w, name, res.PNG)
	}
	img, err := png.Decode(bytes.NewReader(res.PNG))
	if err != nil {
		return err
	}
	return iterm2.Image(c.w, fitWidth(img, c.previewWidth))
}

// fitWidth scales img down to width, keeping its aspect ratio
func fitWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	return transform.Resize(img, width, height, transform.Linear)
}
