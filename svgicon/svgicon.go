// Package svgicon parses SVG images into an abstract representation:
// a list of paths with their style, which can then be consumed by
// painting drivers such as svgraster or svgbounds.
//
// Only a sub-set of SVG is supported (shapes, paths, solid colors and gradients),
// which is enough for most icons and illustrations.
package svgicon

import (
	"encoding/xml"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/net/html/charset"
)

// PathStyle holds the state of the SVG style
type PathStyle struct {
	FillOpacity, LineOpacity float64
	LineWidth                float64
	UseNonZeroWinding        bool

	Join                    JoinOptions
	Dash                    DashOptions
	FillerColor, LinerColor Pattern // either PlainColor or Gradient

	transform Matrix2D // current transform
}

// SvgPath binds a style to a path
type SvgPath struct {
	Path  Path
	Style PathStyle
}

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// SvgIcon holds data from parsed SVGs.
// See the `Draw` methods to use it.
type SvgIcon struct {
	ViewBox      Bounds
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
	SVGPaths     []SvgPath
	Transform    Matrix2D

	Width, Height string // top level width and height attributes

	grads map[string]*Gradient
	defs  map[string][]definition
}

// non rendered containers, whose content is skipped
var skippedElements = map[string]bool{
	"clipPath":      true,
	"mask":          true,
	"symbol":        true,
	"pattern":       true,
	"marker":        true,
	"style":         true,
	"script":        true,
	"metadata":      true,
	"foreignObject": true,
	"filter":        true,
}

// Parser reads SVG documents.
type Parser struct {
	// ErrorMode determines if the parser ignores, errors out, or logs a warning
	// when it does not handle an element found in the document.
	ErrorMode ErrorMode
	// Logger receives the warnings, defaulting to slog.Default()
	Logger *slog.Logger
}

// Parse reads the icon from the given io.Reader.
// Any XML error (such as an unclosed tag) is returned.
func (p Parser) Parse(stream io.Reader) (*SvgIcon, error) {
	icon := &SvgIcon{defs: make(map[string][]definition), grads: make(map[string]*Gradient), Transform: Identity}
	cursor := &iconCursor{styleStack: []PathStyle{DefaultStyle}, icon: icon, errorMode: p.ErrorMode}
	cursor.withLogger(p.Logger)
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	seenTag := false
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				if !seenTag {
					return nil, errors.New("invalid svg xml icon")
				}
				break
			}
			return icon, err
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			seenTag = true
			if skippedElements[se.Name.Local] {
				if err = cursor.handleError(se.Name.Local); err != nil {
					return icon, err
				}
				if err = decoder.Skip(); err != nil {
					return icon, err
				}
				continue
			}
			// Reads all recognized style attributes from the start element
			// and places it on top of the styleStack
			err = cursor.pushStyle(se.Attr)
			if err != nil {
				return icon, err
			}
			err = cursor.readStartElement(se)
			if err != nil {
				return icon, err
			}
		case xml.EndElement:
			cursor.popStyle()
			switch se.Name.Local {
			case "g":
				if cursor.inDefs {
					cursor.currentDef = append(cursor.currentDef, definition{
						Tag: "endg",
					})
				}
			case "title":
				cursor.inTitleText = false
			case "desc":
				cursor.inDescText = false
			case "defs":
				if len(cursor.currentDef) > 0 {
					cursor.icon.defs[cursor.currentDef[0].ID] = cursor.currentDef
					cursor.currentDef = make([]definition, 0)
				}
				cursor.inDefs = false
			case "radialGradient", "linearGradient":
				cursor.inGrad = false
			}
		case xml.CharData:
			if cursor.inTitleText {
				icon.Titles[len(icon.Titles)-1] += string(se)
			}
			if cursor.inDescText {
				icon.Descriptions[len(icon.Descriptions)-1] += string(se)
			}
		}
	}
	return icon, nil
}
