package svgconv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	for _, test := range []struct {
		name, want string
	}{
		{"logo.svg", "logo.png"},
		{"logo.SVG", "logo.png"},
		{"icons/logo.svg", "logo.png"},
		{"archive.tar.svg", "archive.tar.png"},
		{"drawing.xml", "drawing.png"},
		{"noext", DefaultOutputName},
		{".svg", DefaultOutputName},
		{"", DefaultOutputName},
		{"dir/", DefaultOutputName},
	} {
		assert.Equal(t, test.want, OutputName(test.name), "name %q", test.name)
	}
}

func TestLoad(t *testing.T) {
	l := NewLoader(discardLogger())

	doc, err := l.Load("logo.svg", strings.NewReader(svgWide))
	require.NoError(t, err)
	assert.Equal(t, SourceDocument{Name: "logo.svg", Markup: svgWide, OutputName: "logo.png"}, doc)

	// the extension is advisory
	doc, err = l.Load("drawing", strings.NewReader(svgWide))
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputName, doc.OutputName)
}

func TestLoadDecodesText(t *testing.T) {
	l := NewLoader(discardLogger())

	doc, err := l.Load("bom.svg", strings.NewReader("\xEF\xBB\xBF<svg/>"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", doc.Markup)

	utf16 := []byte{0xFF, 0xFE, '<', 0, 's', 0, 'v', 0, 'g', 0, '/', 0, '>', 0}
	doc, err = l.Load("utf16.svg", strings.NewReader(string(utf16)))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", doc.Markup)

	doc, err = l.Load("invalid.svg", strings.NewReader("<svg>a\xffb</svg>"))
	require.NoError(t, err)
	assert.Equal(t, "<svg>a\uFFFDb</svg>", doc.Markup)
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(discardLogger())

	_, err := l.Load("broken.svg", iotest.ErrReader(errors.New("disk on fire")))
	assert.ErrorIs(t, err, ErrRead)
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "broken.svg", readErr.Name)

	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	_, err = l.Load("photo.svg", strings.NewReader(png))
	assert.ErrorIs(t, err, ErrRead)

	_, err = l.LoadFile(filepath.Join(t.TempDir(), "missing.svg"))
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.svg")
	require.NoError(t, os.WriteFile(path, []byte(svgWide), 0o644))

	doc, err := NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Name)
	assert.Equal(t, "logo.png", doc.OutputName)
	assert.Equal(t, svgWide, doc.Markup)
}
