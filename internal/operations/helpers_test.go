package operations

import (
	"fmt"

	"dsstool/internal/dss"
)

func sheet(name string, headers []string, rows ...[]any) *dss.Table {
	t := &dss.Table{Name: name, Headers: headers}
	for _, cells := range rows {
		row := make(dss.Row, len(headers))
		for i, h := range headers {
			switch c := cells[i].(type) {
			case nil:
				row[h] = dss.NullValue()
			case string:
				row[h] = dss.ParseValue(c)
			case int:
				row[h] = dss.IntValue(int64(c))
			default:
				row[h] = dss.StringValue(fmt.Sprint(c))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// surveyWorkbook holds one site with three NR cells on N066 carrier 1. The
// third cell is marked "NO" in the DSS column.
func surveyWorkbook() *dss.Workbook {
	return &dss.Workbook{Tables: []*dss.Table{
		sheet("5G Info",
			[]string{"gNBId", "gNB Name", "NRCellDU", "DSS", "SectorEquipmentFunction", "cellLocalId", "Carrier", "ssbFrequency"},
			[]any{1001, "NCGN003194", "NCGN003194_N066A_1", "WCL03194_9A_1", "SEF_NCGN003194_N066A", 11, 1, 648672},
			[]any{1001, "NCGN003194", "NCGN003194_N066B_1", "WCL03194_9B_1", "SEF_NCGN003194_N066B", 12, 1, 648672},
			[]any{1001, "NCGN003194", "NCGN003194_N066C_1", "NO", "SEF_NCGN003194_N066C", 13, 1, 648672},
		),
		sheet("Mixed Mode Info",
			[]string{"gNodeB Name", "gNBId", "Node to be built as", "eNBId", "eNodeB Name"},
			[]any{"NCGN003194", 1001, "MMBB_03194", 310194, "WCL03194"},
		),
		sheet("eUtran Parameters",
			[]string{"EUtranCellFDDId", "sectorId", "cellId"},
			[]any{"WCL03194_9A_1", 1, 21},
			[]any{"WCL03194_9B_1", 2, 22},
		),
	}}
}

func siteTemplates() dss.TemplateSet {
	return dss.TemplateSet{
		dss.FourSectorTemplate:  "four sector xxLTE_Site_IDxx",
		dss.ThreeSectorTemplate: "site=xxLTE_Site_IDxx enb=xxLTE_eNBIDxx A=LTE_cellidA B=LTE_cellidB nr=xx5G_NR_Node_Namexx_N00XA_1 band=N00X",
	}
}
