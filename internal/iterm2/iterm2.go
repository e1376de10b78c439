// Package iterm2 writes images to terminals supporting the iTerm2
// inline image protocol.
package iterm2

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// IsCompatible reports whether the current terminal is iTerm2.
// TODO: query the terminal instead of trusting the environment
func IsCompatible() bool {
	return os.Getenv("TERM_PROGRAM") == "iTerm.app"
}

// Image writes m as an inline PNG.
func Image(w io.Writer, m image.Image) error {
	if _, err := io.WriteString(w, "\x1b]1337;File=inline=1:"); err != nil {
		return err
	}
	enc := base64.NewEncoder(base64.StdEncoding, w)
	if err := png.Encode(enc, m); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\x07")
	return err
}

// PNG writes already encoded PNG data as an inline image, with the
// given file name.
func PNG(w io.Writer, name string, data []byte) error {
	_, err := fmt.Fprintf(w, "\x1b]1337;File=name=%s;size=%d;inline=1:%s\x07",
		base64.StdEncoding.EncodeToString([]byte(name)), len(data), base64.StdEncoding.EncodeToString(data))
	return err
}

// CellSize is the size of a terminal cell, in points.
type CellSize struct {
	Width  float64
	Height float64
	Scale  float64
}

// ReportCellSize asks the terminal attached to f for its cell size.
// f is put in raw mode during the exchange, so it must not be read
// concurrently.
func ReportCellSize(f *os.File) (sz CellSize, err error) {
	state, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return CellSize{}, err
	}
	defer func() {
		if rerr := term.Restore(int(f.Fd()), state); err == nil {
			err = rerr
		}
	}()

	if _, err := f.Write([]byte("\x1b]1337;ReportCellSize\x07")); err != nil {
		return CellSize{}, err
	}
	b := make([]byte, 50)
	n, err := f.Read(b)
	if err != nil {
		return CellSize{}, err
	}
	return parseCellSize(string(b[:n]))
}

var errCellSizeReport = errors.New("iterm2: invalid cell size report")

// parseCellSize reads "\x1b]1337;ReportCellSize=height;width[;scale]\x1b\\"
func parseCellSize(s string) (CellSize, error) {
	const prefix = "ReportCellSize="
	start := strings.Index(s, prefix)
	if start < 0 {
		return CellSize{}, errCellSizeReport
	}
	s = s[start+len(prefix):]
	stop := strings.Index(s, "\x1b\\")
	if stop < 0 {
		return CellSize{}, errCellSizeReport
	}
	parts := strings.Split(s[:stop], ";")
	if len(parts) < 2 {
		return CellSize{}, errCellSizeReport
	}
	sz := CellSize{Scale: 1}
	var err error
	if sz.Height, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return CellSize{}, errCellSizeReport
	}
	if sz.Width, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return CellSize{}, errCellSizeReport
	}
	if len(parts) > 2 {
		if sz.Scale, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return CellSize{}, errCellSizeReport
		}
	}
	return sz, nil
}

// Resolution is the size of the terminal window, in pixels.
type Resolution struct {
	Width       int
	Height      int
	WidthAlign  int
	HeightAlign int
}

// PixelResolution returns the size of the terminal attached to f.
func PixelResolution(f *os.File) (Resolution, error) {
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return Resolution{}, err
	}
	sz, err := ReportCellSize(f)
	if err != nil {
		return Resolution{}, err
	}
	return sz.resolution(w, h), nil
}

func (sz CellSize) resolution(cols, rows int) Resolution {
	return Resolution{
		Width:       cols * int(sz.Width*sz.Scale),
		Height:      rows * int(sz.Height*sz.Scale),
		WidthAlign:  int(sz.Width * sz.Scale),
		HeightAlign: int(sz.Height * sz.Scale),
	}
}
