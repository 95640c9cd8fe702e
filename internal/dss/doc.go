// Package dss implements the DSS configuration generator core.
//
// A run is six sequential stages over already-parsed tabular data:
//
//	Extract -> Group -> Clean -> Enrich -> Map -> Render
//
// Extract keeps the rows of the primary worksheet whose DSS value is not the
// exclusion token. Group partitions them by band+carrier pattern. Clean
// assigns sector names and projects each row to a fixed column allow-list.
// Enrich joins the node-identity and cell-identity worksheets. Map produces
// the placeholder vocabulary used by the text templates, and Render performs
// longest-token-first substitution into the selected template.
//
// The package does no I/O. Stages log through a caller supplied *slog.Logger.
package dss
