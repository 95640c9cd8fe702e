// Package workbook loads site survey spreadsheets into dss tables.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dsstool/internal/dss"
)

// ErrUnsupportedFormat is returned for anything but an Office Open XML
// workbook. Legacy .xls files must be re-saved as .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// ErrUnreadable is returned when a file has a workbook extension but its
// content cannot be parsed.
var ErrUnreadable = errors.New("workbook is unreadable")

// Supported reports whether name has an extension the loader reads.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Loader reads every worksheet of a workbook. The first row of a sheet is
// its header row. Cells stored as text stay strings; every other cell is
// parsed with dss.ParseValue.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "workbook"))}
}

// Read loads a workbook from r. name is only used for the format check and
// in messages.
func (l *Loader) Read(ctx context.Context, name string, r io.Reader) (*dss.Workbook, error) {
	if !Supported(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w: %w", name, ErrUnreadable, err)
	}
	defer f.Close()
	return l.load(ctx, name, f)
}

// Open loads the workbook at path.
func (l *Loader) Open(ctx context.Context, path string) (*dss.Workbook, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open workbook %s: %w: %w", filepath.Base(path), ErrUnreadable, err)
	}
	defer f.Close()
	return l.load(ctx, filepath.Base(path), f)
}

func (l *Loader) load(ctx context.Context, name string, f *excelize.File) (*dss.Workbook, error) {
	wb := &dss.Workbook{}
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
		}
		t := toTable(sheet, rows, textCells(f, sheet))
		wb.Tables = append(wb.Tables, t)
		l.logger.DebugContext(ctx, "worksheet read",
			slog.String("sheet", sheet),
			slog.Int("columns", len(t.Headers)),
			slog.Int("rows", len(t.Rows)))
	}

	l.logger.InfoContext(ctx, "workbook loaded",
		slog.String("file", name),
		slog.Any("sheets", wb.SheetNames()))
	return wb, nil
}

// textCells reports whether the cell at zero-based (row, col) of sheet is
// stored as text: a shared string, an inline string or a formula with a
// string result.
func textCells(f *excelize.File, sheet string) func(row, col int) bool {
	return func(row, col int) bool {
		cell, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return false
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return false
		}
		switch typ {
		case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
			return true
		}
		return false
	}
}

// toTable builds a table from raw rows. The header row is widened to the
// longest row so cells past the last header get an "Unnamed: {index}" column.
// text may be nil, in which case every cell is parsed.
func toTable(name string, rows [][]string, text func(row, col int) bool) *dss.Table {
	t := &dss.Table{Name: name}
	if len(rows) == 0 {
		return t
	}
	width := 0
	for _, cells := range rows {
		width = max(width, len(cells))
	}
	head := make([]string, width)
	copy(head, rows[0])
	t.Headers = headers(head)

	for r, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		row := make(dss.Row, len(t.Headers))
		for i, h := range t.Headers {
			if i >= len(cells) {
				row[h] = dss.NullValue()
				continue
			}
			row[h] = cellValue(cells[i], text != nil && text(r+1, i))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cellValue(raw string, text bool) dss.Value {
	if !text {
		return dss.ParseValue(raw)
	}
	if strings.TrimSpace(raw) == "" {
		return dss.NullValue()
	}
	return dss.StringValue(raw)
}

// headers names blank header cells "Unnamed: {index}" and suffixes repeated
// names with ".1", ".2" in column order.
func headers(cells []string) []string {
	out := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, c := range cells {
		h := c
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
