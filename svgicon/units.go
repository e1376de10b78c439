package svgicon

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// absolute units, expressed in user units (CSS pixels)
var unitFactors = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 4. / 3,
	"pc": 16,
	"mm": 96. / 25.4,
	"cm": 96. / 2.54,
	"in": 96,
	"em": 16, // default font size
	"ex": 8,
}

var errRelativeLength = errors.New("relative length")

func parseFloat(s string, bitSize int) (float64, error) {
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// parseBasicFloat parses an attribute value, ignoring an
// optional absolute unit suffix.
func parseBasicFloat(s string) (float64, error) {
	f, err := ParseLength(s)
	if err == errRelativeLength {
		return 0, nil
	}
	return f, err
}

// ParseLength converts a length attribute such as "12mm" or "3.5"
// to user units. Percentages cannot be resolved without a context
// and are reported as an error; so are empty values.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty length")
	}
	if strings.HasSuffix(s, "%") {
		return 0, errRelativeLength
	}
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i--
			continue
		}
		break
	}
	factor, ok := unitFactors[strings.ToLower(s[i:])]
	if !ok {
		return 0, fmt.Errorf("unsupported unit in length %q", s)
	}
	f, err := parseFloat(s[:i], 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return f * factor, nil
}

// readFraction parses a number or a percentage
func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = parseFloat(v, 64)
	f /= d
	return
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
}

// percentageReference selects the viewport dimension
// a percentage is resolved against.
type percentageReference uint8

const (
	widthPercentage percentageReference = iota
	heightPercentage
	diagPercentage
)

// parseUnit converts a coordinate or length attribute to user units,
// resolving percentages against the current viewport.
func (c *iconCursor) parseUnit(s string, asPerc percentageReference) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return ParseLength(s)
	}
	f, err := parseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	vb := c.icon.ViewBox
	var ref float64
	switch asPerc {
	case widthPercentage:
		ref = vb.W
	case heightPercentage:
		ref = vb.H
	case diagPercentage:
		ref = math.Sqrt(vb.W*vb.W+vb.H*vb.H) / math.Sqrt2
	}
	return f / 100 * ref, nil
}
