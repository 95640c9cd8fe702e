package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dsstool/internal/dss"
)

// ManifestFileName is the name of the manifest written next to the outputs.
const ManifestFileName = "manifest.csv"

// OutputWriter writes rendered configurations into a directory.
type OutputWriter struct {
	dir    string
	logger *slog.Logger
}

func NewOutputWriter(dir string, logger *slog.Logger) *OutputWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputWriter{dir: dir, logger: logger.With(slog.String("component", "exporter"))}
}

// WriteAll writes every output and the manifest. It returns the paths
// written, manifest last.
func (w *OutputWriter) WriteAll(outputs []*dss.RenderedOutput) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(outputs)+1)
	for _, o := range outputs {
		p := filepath.Join(w.dir, filepath.Base(o.OutputFile))
		if err := os.WriteFile(p, []byte(o.Content), 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", o.OutputFile, err)
		}
		w.logger.Info("output written",
			slog.String("file", o.OutputFile),
			slog.String("template", o.TemplateUsed),
			slog.Int("replacements", o.Replacements))
		paths = append(paths, p)
	}

	manifest := filepath.Join(w.dir, ManifestFileName)
	if err := WriteCSVFile(manifest, WriteOptions{
		Headers:   ManifestHeaders,
		Records:   ManifestRecords(outputs),
		BOMPrefix: true,
	}); err != nil {
		return paths, fmt.Errorf("failed to write manifest: %w", err)
	}
	paths = append(paths, manifest)
	return paths, nil
}
