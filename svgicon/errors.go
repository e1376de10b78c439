package svgicon

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unparsed SVG elements
	IgnoreErrorMode ErrorMode = iota

	// WarnErrorMode logs a warning when an unparsed SVG element is found
	WarnErrorMode

	// StrictErrorMode causes an error when an unparsed SVG element is found
	StrictErrorMode
)

func (m ErrorMode) String() string {
	switch m {
	case IgnoreErrorMode:
		return "ignore"
	case WarnErrorMode:
		return "warn"
	case StrictErrorMode:
		return "strict"
	default:
		return fmt.Sprintf("ErrorMode(%d)", uint8(m))
	}
}

// ParseErrorMode accepts "ignore", "warn" or "strict".
// The empty string maps to IgnoreErrorMode.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return IgnoreErrorMode, nil
	case "warn":
		return WarnErrorMode, nil
	case "strict":
		return StrictErrorMode, nil
	}
	return 0, fmt.Errorf("svgicon: unknown error mode %q", s)
}

var (
	errParamMismatch  = errors.New("param mismatch")
	errCommandUnknown = errors.New("unknown command")
	errZeroLengthID   = errors.New("zero length id")
)

// handleError reacts to an unsupported element, according
// to the cursor error mode.
func (c *iconCursor) handleError(tag string) error {
	switch c.errorMode {
	case StrictErrorMode:
		return fmt.Errorf("cannot process svg element %s", tag)
	case WarnErrorMode:
		c.logger.Warn("unsupported svg element", "element", tag)
	}
	return nil
}

func (c *iconCursor) withLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	c.logger = l.With("component", "svgicon")
}
