package svgconv

import (
	"errors"
	"fmt"
)

var (
	// ErrRead is returned when the source file can't be read as text.
	ErrRead = errors.New("could not read file")
	// ErrUnresolvableDimensions is returned when no valid intrinsic size
	// can be computed for the document.
	ErrUnresolvableDimensions = errors.New("could not determine image dimensions")
	// ErrDecode is returned when the embedded image fails to decode.
	ErrDecode = errors.New("could not decode image")
	// ErrExport is returned when the PNG can't be saved.
	ErrExport = errors.New("could not export image")
	// ErrClosed is returned by Session methods after Close.
	ErrClosed = errors.New("svgconv: session closed")
)

// ReadError wraps a failure to read a source.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("svgconv: reading %q: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() []error { return []error{ErrRead, e.Err} }

// DecodeError wraps a failure of the decoding or painting step.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("svgconv: decoding image: %v", e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// ExportError wraps a failure to save the PNG.
type ExportError struct {
	Name string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("svgconv: exporting %q: %v", e.Name, e.Err)
}

func (e *ExportError) Unwrap() []error { return []error{ErrExport, e.Err} }

func unresolvable(format string, args ...any) error {
	return fmt.Errorf("svgconv: %w: %s", ErrUnresolvableDimensions, fmt.Sprintf(format, args...))
}
