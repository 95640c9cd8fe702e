package dss

import "sort"

// Row maps a worksheet header to the cell value in one record.
type Row map[string]Value

// Get returns the value stored under the exact header, or null.
func (r Row) Get(header string) Value {
	return r[header]
}

// Lookup finds header case-insensitively (trimmed, upper-cased on both sides)
// and returns the matching header as stored in the row.
func (r Row) Lookup(header string) (string, Value, bool) {
	if v, ok := r[header]; ok {
		return header, v, true
	}
	want := fold(header)
	for _, k := range r.sortedKeys() {
		if fold(k) == want {
			return k, r[k], true
		}
	}
	return "", Value{}, false
}

func (r Row) sortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Table is one parsed worksheet: a header row followed by records.
type Table struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Column returns the first header equal to name after trimming and
// upper-casing.
func (t *Table) Column(name string) (string, bool) {
	want := fold(name)
	for _, h := range t.Headers {
		if fold(h) == want {
			return h, true
		}
	}
	return "", false
}

// Workbook is an ordered set of worksheets.
type Workbook struct {
	Tables []*Table
}

// Sheet returns the first worksheet whose trimmed, upper-cased name equals
// the trimmed, upper-cased name given.
func (w *Workbook) Sheet(name string) (*Table, bool) {
	if w == nil {
		return nil, false
	}
	want := fold(name)
	for _, t := range w.Tables {
		if fold(t.Name) == want {
			return t, true
		}
	}
	return nil, false
}

// SheetNames lists worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	if w == nil {
		return nil
	}
	names := make([]string, 0, len(w.Tables))
	for _, t := range w.Tables {
		names = append(names, t.Name)
	}
	return names
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
