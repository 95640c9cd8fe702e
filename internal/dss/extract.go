package dss

import (
	"io"
	"log/slog"
)

// FilteredRows is the Extractor's output: the primary worksheet rows whose
// DSS value is present and not the exclusion token.
type FilteredRows struct {
	Sheet    string
	Column   string // DSS header as spelled in the worksheet
	Headers  []string
	Rows     []Row
	Total    int
	Excluded int
}

// Extractor selects the DSS rows of the primary worksheet.
type Extractor struct {
	worksheet string
	column    string
	exclude   string
	logger    *slog.Logger
}

func NewExtractor(opts Options, logger *slog.Logger) *Extractor {
	opts = opts.WithDefaults()
	return &Extractor{
		worksheet: opts.Worksheet,
		column:    opts.DSSColumn,
		exclude:   opts.Exclude,
		logger:    componentLogger(logger, "extractor"),
	}
}

// Extract returns the rows whose DSS value, trimmed and upper-cased, is non-null
// and differs from the exclusion token. A missing worksheet or column is a
// *NotFoundError. Zero surviving rows is not an error.
func (e *Extractor) Extract(wb *Workbook) (*FilteredRows, error) {
	sheet, ok := wb.Sheet(e.worksheet)
	if !ok {
		return nil, worksheetNotFound(e.worksheet, wb)
	}
	e.logger.Info("worksheet loaded",
		slog.String("sheet", sheet.Name),
		slog.Int("rows", len(sheet.Rows)))

	col, ok := sheet.Column(e.column)
	if !ok {
		return nil, columnNotFound(e.column, sheet)
	}

	exclude := fold(e.exclude)
	out := &FilteredRows{
		Sheet:   sheet.Name,
		Column:  col,
		Headers: sheet.Headers,
		Rows:    make([]Row, 0, len(sheet.Rows)),
		Total:   len(sheet.Rows),
	}
	for _, row := range sheet.Rows {
		v := row.Get(col)
		if v.IsNull() {
			continue
		}
		if fold(v.String()) == exclude {
			out.Excluded++
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	e.logger.Info("rows filtered",
		slog.String("column", col),
		slog.String("exclude", e.exclude),
		slog.Int("kept", len(out.Rows)),
		slog.Int("excluded", out.Excluded))
	return out, nil
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger.With(slog.String("component", component))
}
