package exporter

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"dsstool/internal/dss"
)

// ArchiveName is the download name of a run archive created at t.
func ArchiveName(t time.Time) string {
	return "dss_output_" + t.Format("20060102_150405") + ".zip"
}

// WriteArchive streams every output plus the manifest into a zip on w.
func WriteArchive(w io.Writer, outputs []*dss.RenderedOutput) error {
	zw := zip.NewWriter(w)

	for _, o := range outputs {
		f, err := zw.Create(filepath.Base(o.OutputFile))
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", o.OutputFile, err)
		}
		if _, err := io.WriteString(f, o.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.OutputFile, err)
		}
	}

	f, err := zw.Create(ManifestFileName)
	if err != nil {
		return fmt.Errorf("failed to add manifest: %w", err)
	}
	if err := WriteManifest(f, outputs); err != nil {
		return err
	}

	return zw.Close()
}
