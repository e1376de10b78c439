package svgconv

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultOutputName is used when no name can be derived from the source.
const DefaultOutputName = "image.png"

// SourceDocument is the text of a loaded SVG file.
// It is replaced as a whole by the next load.
type SourceDocument struct {
	Name       string // as given by the user, possibly a path
	Markup     string // UTF-8 text
	OutputName string // suggested name for the exported PNG
}

// OutputName derives the export name from a source name, by replacing
// its last extension with ".png". Names without extension, or with an
// empty stem, map to DefaultOutputName.
func OutputName(name string) string {
	base := filepath.Base(filepath.ToSlash(name))
	if base == "." || base == "/" {
		return DefaultOutputName
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" || stem == "" {
		return DefaultOutputName
	}
	return stem + ".png"
}

// Loader reads sources as UTF-8 text.
type Loader struct {
	logger *slog.Logger
}

// NewLoader returns a loader logging to logger, or to slog.Default()
// when nil.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the whole content of r. The name is only used for
// reporting and to derive the output name: a missing ".svg" extension
// is not an error.
func (l *Loader) Load(name string, r io.Reader) (SourceDocument, error) {
	if !strings.EqualFold(filepath.Ext(name), ".svg") {
		l.logger.Debug("source without .svg extension", "name", name)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return SourceDocument{}, &ReadError{Name: name, Err: err}
	}
	if kind, _ := filetype.Match(raw); kind != filetype.Unknown {
		return SourceDocument{}, &ReadError{Name: name, Err: fmt.Errorf("binary content (%s)", kind.MIME.Value)}
	}
	text, err := decodeText(raw)
	if err != nil {
		return SourceDocument{}, &ReadError{Name: name, Err: err}
	}
	l.logger.Debug("source loaded", "name", name, "bytes", len(raw))
	return SourceDocument{Name: name, Markup: text, OutputName: OutputName(name)}, nil
}

// LoadFile opens and reads the file at path.
func (l *Loader) LoadFile(path string) (SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return SourceDocument{}, &ReadError{Name: path, Err: err}
	}
	defer f.Close()
	return l.Load(path, f)
}

// decodeText transcodes raw to UTF-8, honouring a UTF-8 or UTF-16 byte
// order mark. Invalid sequences are replaced by U+FFFD.
func decodeText(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(out), "\uFFFD"), nil
}
