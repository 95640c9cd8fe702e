package dss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func auxWorkbook() *Workbook {
	return &Workbook{Tables: []*Table{
		table("MIXED MODE INFO", []string{"gNodeB Name", "gNBId", "Node to be built as", "eNBId", "eNodeB Name"},
			[]any{"OTHER", 1001, "wrong", 1, "X"},
			[]any{"NCGN003194", 1001, "MMBB_PRIMARY_01", "310194.0", "WCL03194"},
			[]any{"NCGN003194", 1001, "second", 2, "Y"},
		),
		table("eUtran Parameters", []string{" EUtranCellFDDId ", "sectorId", "cellId"},
			[]any{"WCL03194_9A_1 ", 1, 11},
			[]any{"WCL031949A1", 9, 99},
			[]any{"WCL03194_9B_1", "S2", 12.0},
			[]any{"WCL03194_9B_1", 7, 77},
		),
	}}
}

func cleaned() CleanedRecord {
	return CleanedRecord{
		GroupName: "DSS1",
		Pattern:   ParsedPattern("N066", "1"),
		DSS: SectorValues{
			"alpha": StringValue("WCL03194_9A_1"),
			"beta":  StringValue(" WCL03194_9B_1"),
			"gamma": StringValue("wcl03194_9c_1"),
		},
		Rows: []ProjectedRow{
			{"gNB Name": StringValue("NCGN003194"), "gNBId": FloatValue(1001), "SectorEquipmentFunction": StringValue("SEF_NCGN_N066A")},
			{"SectorEquipmentFunction": StringValue("NOSPLIT")},
			{"SectorEquipmentFunction": StringValue("A_B_N066C")},
		},
	}
}

func TestEnricher_Enrich(t *testing.T) {
	rec := NewEnricher(auxWorkbook(), DefaultOptions(), nil).Enrich(cleaned())

	assert.Equal(t, "MMBB_PRIMARY_01", rec.PrimaryNode.String())
	assert.Equal(t, KindInt, rec.ENBID.Kind())
	assert.Equal(t, "310194", rec.ENBID.String())
	assert.Equal(t, "WCL03194", rec.LTESiteID.String())

	alpha := rec.Sector("alpha")
	assert.Equal(t, "1", alpha.SectorID.String())
	assert.Equal(t, "11", alpha.CellID.String())

	beta := rec.Sector("beta")
	assert.Equal(t, KindString, beta.SectorID.Kind(), "non integer-like ids pass through")
	assert.Equal(t, "S2", beta.SectorID.String())
	assert.Equal(t, KindInt, beta.CellID.Kind())
	assert.Equal(t, "12", beta.CellID.String())

	_, ok := rec.Sectors["gamma"]
	assert.False(t, ok, "matching is case sensitive")

	assert.Equal(t, map[int]string{1: "N066A", 3: "N066C"}, rec.Equipment)
}

func TestEnricher_MissingWorksheets(t *testing.T) {
	rec := NewEnricher(&Workbook{}, DefaultOptions(), nil).Enrich(cleaned())
	assert.True(t, rec.PrimaryNode.IsNull())
	assert.True(t, rec.ENBID.IsNull())
	assert.Empty(t, rec.Sectors)
	assert.Len(t, rec.Equipment, 2)
}

func TestEnricher_NodeNeedsBothKeys(t *testing.T) {
	c := cleaned()
	c.Rows[0] = ProjectedRow{"gNB Name": StringValue("NCGN003194")}
	rec := NewEnricher(auxWorkbook(), DefaultOptions(), nil).Enrich(c)
	assert.True(t, rec.PrimaryNode.IsNull())
	require.NotEmpty(t, rec.Sectors)
}

func TestEnricher_IDTypeMismatchDoesNotJoin(t *testing.T) {
	c := cleaned()
	c.Rows[0]["gNBId"] = StringValue("1001")
	rec := NewEnricher(auxWorkbook(), DefaultOptions(), nil).Enrich(c)
	assert.True(t, rec.LTESiteID.IsNull())
}
