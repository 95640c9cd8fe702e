package dss

import "fmt"

// table builds a worksheet from literal cells. Strings are parsed the way the
// workbook loader parses them; nil is an empty cell.
func table(name string, headers []string, rows ...[]any) *Table {
	t := &Table{Name: name, Headers: headers}
	for _, cells := range rows {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i >= len(cells) || cells[i] == nil {
				row[h] = NullValue()
				continue
			}
			switch c := cells[i].(type) {
			case string:
				row[h] = ParseValue(c)
			case int:
				row[h] = IntValue(int64(c))
			case float64:
				row[h] = FloatValue(c)
			default:
				row[h] = StringValue(fmt.Sprint(c))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

var infoHeaders = []string{"gNBId", "gNB Name", "NRCellDU", "DSS", "SectorEquipmentFunction", "cellLocalId", "Carrier", "ssbFrequency", "Operating Band"}

// infoRow builds a "5G Info" row for site NCGN003194 (gNBId 1001).
func infoRow(nr, dss, sef string, local int) []any {
	return []any{1001, "NCGN003194", nr, dss, sef, local, "1", 648672, "n66"}
}
