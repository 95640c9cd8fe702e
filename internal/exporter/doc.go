// Package exporter packages rendered site configurations for download.
//
// This package contains three components:
//
// CSVWriter: Core CSV writing with headers and a UTF-8 BOM for Excel
// compatibility. It writes the run manifest.
//
// OutputWriter: Writes each rendered configuration to {name}_output.txt in a
// directory, together with manifest.csv.
//
// Archive: Streams the configurations and the manifest into one zip named
// dss_output_{YYYYmmdd_HHMMSS}.zip.
//
// Example usage:
//
//	w := exporter.NewOutputWriter(dir, logger)
//	files, err := w.WriteAll(outputs)
//
//	var buf bytes.Buffer
//	err = exporter.WriteArchive(&buf, outputs)
package exporter
