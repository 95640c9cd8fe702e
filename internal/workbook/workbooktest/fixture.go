// Package workbooktest builds xlsx fixtures for tests.
package workbooktest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: the first row is the header row.
type Sheet struct {
	Name string
	Rows [][]any
}

// Bytes renders sheets as an xlsx document in the given order.
func Bytes(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, err
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			values := append([]any(nil), row...)
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("sheet %s row %d: %w", s.Name, r+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Survey is a site with two DSS cells on N066 carrier 1 and one cell marked
// "NO", plus the node and cell lookup sheets.
func Survey() []Sheet {
	return []Sheet{
		{Name: "5G Info", Rows: [][]any{
			{"gNBId", "gNB Name", "NRCellDU", "DSS", "SectorEquipmentFunction", "cellLocalId", "Carrier", "ssbFrequency"},
			{1001, "NCGN003194", "NCGN003194_N066A_1", "WCL03194_9A_1", "SEF_NCGN003194_N066A", 11, 1, 648672},
			{1001, "NCGN003194", "NCGN003194_N066B_1", "WCL03194_9B_1", "SEF_NCGN003194_N066B", 12, 1, 648672},
			{1001, "NCGN003194", "NCGN003194_N066C_1", "NO", "SEF_NCGN003194_N066C", 13, 1, 648672},
		}},
		{Name: "Mixed Mode Info", Rows: [][]any{
			{"gNodeB Name", "gNBId", "Node to be built as", "eNBId", "eNodeB Name"},
			{"NCGN003194", 1001, "MMBB_03194", 310194, "WCL03194"},
		}},
		{Name: "eUtran Parameters", Rows: [][]any{
			{"EUtranCellFDDId", "sectorId", "cellId"},
			{"WCL03194_9A_1", 1, 21},
			{"WCL03194_9B_1", 2, 22},
		}},
	}
}

// SurveyBytes is Survey rendered as xlsx.
func SurveyBytes() ([]byte, error) {
	return Bytes(Survey()...)
}
