package svgconv

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// PNGMIMEType is the media type of exported images.
const PNGMIMEType = "image/png"

// ExportArtifact is a named PNG ready to be saved.
type ExportArtifact struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Saver delivers a staged artifact. staged is the path of a temporary
// file holding the artifact data, removed by the caller once Save returns.
type Saver interface {
	Save(artifact ExportArtifact, staged string) (location string, err error)
}

// DirSaver moves artifacts into a directory, replacing any file of the same name.
type DirSaver struct {
	Dir string // defaults to the working directory
}

// Save implements Saver. The destination is written atomically.
func (s DirSaver) Save(artifact ExportArtifact, staged string) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	dst := filepath.Join(dir, artifact.Name)
	// try a plain rename first, falling back to a copy on another file system
	if err := os.Rename(staged, dst); err == nil {
		return dst, nil
	}
	tmp, err := os.CreateTemp(dir, ".svg2png-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	_ = tmp.Chmod(0o644)
	if _, err := tmp.Write(artifact.Data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Exporter saves rendered PNGs.
type Exporter struct {
	saver  Saver
	logger *slog.Logger
}

// NewExporter returns an exporter saving through saver (a DirSaver
// on the working directory when nil).
func NewExporter(saver Saver, logger *slog.Logger) *Exporter {
	if saver == nil {
		saver = DirSaver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{saver: saver, logger: logger}
}

var errNoResult = errors.New("no rendered image")

// Artifact packages result under filename. Directories are stripped
// from filename; an empty name becomes DefaultOutputName.
func (e *Exporter) Artifact(result RasterResult, filename string) ExportArtifact {
	name := filepath.Base(filename)
	if filename == "" || name == "." || name == string(filepath.Separator) {
		name = DefaultOutputName
	}
	return ExportArtifact{Name: name, MIMEType: PNGMIMEType, Data: result.PNG}
}

// Download stages the artifact in a temporary file and hands it to the
// saver. The temporary file is always released. Failures are logged
// and returned as *ExportError; nothing is retried.
func (e *Exporter) Download(result RasterResult, filename string) error {
	artifact := e.Artifact(result, filename)
	location, err := e.download(artifact)
	if err != nil {
		e.logger.Error("export failed", "name", artifact.Name, "err", err)
		return &ExportError{Name: artifact.Name, Err: err}
	}
	e.logger.Info("image exported", "path", location, "bytes", len(artifact.Data),
		"width", result.OutputWidth, "height", result.OutputHeight)
	return nil
}

func (e *Exporter) download(artifact ExportArtifact) (string, error) {
	if len(artifact.Data) == 0 {
		return "", errNoResult
	}
	staged, err := os.CreateTemp("", "svg2png-*.png")
	if err != nil {
		return "", fmt.Errorf("staging: %w", err)
	}
	defer os.Remove(staged.Name())
	_ = staged.Chmod(0o644) // temporary files are private
	if _, err := staged.Write(artifact.Data); err != nil {
		staged.Close()
		return "", fmt.Errorf("staging: %w", err)
	}
	if err := staged.Close(); err != nil {
		return "", fmt.Errorf("staging: %w", err)
	}
	return e.saver.Save(artifact, staged.Name())
}
