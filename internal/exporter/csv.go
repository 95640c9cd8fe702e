package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"dsstool/internal/dss"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ManifestHeaders are the columns of manifest.csv.
var ManifestHeaders = []string{"variable_name", "template_used", "output_file", "replacements"}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes a CSV file, creating its directory.
func WriteCSVFile(path string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteCSV(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ManifestRecords lists one row per output in ManifestHeaders order.
func ManifestRecords(outputs []*dss.RenderedOutput) [][]string {
	records := make([][]string, 0, len(outputs))
	for _, o := range outputs {
		records = append(records, []string{
			o.VariableName,
			o.TemplateUsed,
			o.OutputFile,
			strconv.Itoa(o.Replacements),
		})
	}
	return records
}

// WriteManifest writes the manifest of outputs to w.
func WriteManifest(w io.Writer, outputs []*dss.RenderedOutput) error {
	return WriteCSV(w, WriteOptions{
		Headers:   ManifestHeaders,
		Records:   ManifestRecords(outputs),
		BOMPrefix: true,
	})
}
