package svgconv

import (
	"encoding/base64"
	"errors"
	"strings"
)

const (
	svgDataURIPrefix = "data:image/svg+xml;charset=utf-8;base64,"
	pngDataURIPrefix = "data:image/png;base64,"
)

// EmbeddableImage is an SVG document encoded as a data URI, suitable
// for an image decoder: the base64 payload holds the UTF-8 bytes of the markup.
type EmbeddableImage string

// NewEmbeddableImage encodes markup. Invalid UTF-8 sequences
// are replaced, so that any text is embeddable.
func NewEmbeddableImage(markup string) EmbeddableImage {
	payload := []byte(strings.ToValidUTF8(markup, "\uFFFD"))
	return EmbeddableImage(svgDataURIPrefix + base64.StdEncoding.EncodeToString(payload))
}

var errNotSVGDataURI = errors.New("not an SVG data URI")

// Markup decodes the payload back to the SVG markup.
func (img EmbeddableImage) Markup() ([]byte, error) {
	payload, ok := strings.CutPrefix(string(img), svgDataURIPrefix)
	if !ok {
		return nil, errNotSVGDataURI
	}
	return base64.StdEncoding.DecodeString(payload)
}
