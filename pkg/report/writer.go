package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Document filenames produced by WriteAll.
const (
	FullReportFile       = "analysis_report.md"
	ExecutiveSummaryFile = "executive_summary.md"
	SimpleSummaryFile    = "simple_summary.md"
)

// OutputWriter renders and persists analysis documents.
type OutputWriter interface {
	WriteDocument(a *Analysis, level Level, path string) error
	WriteAll(a *Analysis, outputDir string) error
}

// FileWriter implements OutputWriter on the local filesystem.
type FileWriter struct {
	logger zerolog.Logger
}

// NewFileWriter creates a file-based output writer.
func NewFileWriter(logger zerolog.Logger) OutputWriter {
	return &FileWriter{logger: logger}
}

// WriteAll renders every document variant into outputDir, creating the
// directory if needed.
func (fw *FileWriter) WriteAll(a *Analysis, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	documents := []struct {
		level Level
		name  string
	}{
		{LevelFull, FullReportFile},
		{LevelExecutive, ExecutiveSummaryFile},
		{LevelSimple, SimpleSummaryFile},
	}
	for _, doc := range documents {
		path := filepath.Join(outputDir, doc.name)
		if err := fw.WriteDocument(a, doc.level, path); err != nil {
			return fmt.Errorf("failed to write %s document: %w", doc.level, err)
		}
	}
	return nil
}

// WriteDocument renders one variant and writes it to path. The file handle
// is always released; close failures surface as write errors.
func (fw *FileWriter) WriteDocument(a *Analysis, level Level, path string) error {
	content, err := Render(a, level)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	fw.logger.Info().
		Str("level", string(level)).
		Str("path", path).
		Int("bytes", len(content)).
		Msg("report written")
	return nil
}
