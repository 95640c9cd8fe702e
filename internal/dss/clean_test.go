package dss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorLetter(t *testing.T) {
	tests := []struct {
		id     string
		letter string
		ok     bool
	}{
		{"NCGN003194_N002A_1", "A", true},
		{"WCL03194_9A_1", "A", true},
		{"WCL03194_12D_2", "D", true},
		{"SITE_N066G_1", "G", true},
		{"SITE_N066A", "", false},
		{"YES", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			letter, ok := SectorLetter(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.letter, letter)
		})
	}
}

func TestSectorNamer(t *testing.T) {
	n := newSectorNamer()
	var got []string
	for _, l := range []string{"A", "B", "A", "C", "A", "F", "G"} {
		got = append(got, n.name(l))
	}
	assert.Equal(t, []string{"alpha", "beta", "alpha1", "gamma", "alpha2", "zeta", "sector_g"}, got)
}

func TestCleaner_Clean(t *testing.T) {
	g := Group{
		Name:    "DSS1",
		Pattern: ParsedPattern("N066", "1"),
		Rows: table("5G Info", []string{"GNBID", "gnb name", "cellLocalId", "Carrier", "Extra"},
			[]any{1001, "NODE", 11, 1, "drop"},
			[]any{1001, "NODE", 12, 1, "drop"},
			[]any{1001, "NODE", 13, 1, "drop"},
			[]any{1001, "NODE", 14, 1, "drop"},
		).Rows,
		DSSValues: []Value{
			StringValue("WCL_9A_1"),
			StringValue("WCL_9B_1"),
			StringValue("WCL_9A_2"),
			StringValue("WCL_9C_1"),
		},
		CellIDs: []Value{
			StringValue("NCGN_N066A_1"),
			StringValue("NCGN_N066A_1"),
			NullValue(),
			StringValue("bogus"),
		},
	}

	rec := NewCleaner(nil).Clean(g)

	assert.Equal(t, "DSS1", rec.GroupName)
	assert.Equal(t, "N066_1", rec.Pattern.Key())
	assert.Equal(t, 4, rec.RowCount)

	assert.Equal(t, []string{"alpha", "alpha1", "beta", "gamma"}, rec.DSS.Names())
	assert.Equal(t, "WCL_9A_1", rec.DSS["alpha"].String())
	assert.Equal(t, "WCL_9A_2", rec.DSS["alpha1"].String())
	assert.Equal(t, "WCL_9C_1", rec.DSS["gamma"].String())

	// NR counters are independent of the DSS ones.
	assert.Equal(t, []string{"alpha", "alpha1"}, rec.NR.Names())

	require.Len(t, rec.Rows, 4)
	row := rec.Rows[0]
	assert.Equal(t, "1001", row.Get("gNBId").String())
	assert.Equal(t, "NODE", row.Get("gNB Name").String())
	assert.Equal(t, "11", row.Get("cellLocalId").String())
	_, hasExtra := row["Extra"]
	assert.False(t, hasExtra)
	_, hasSEF := row["SectorEquipmentFunction"]
	assert.False(t, hasSEF, "absent columns are omitted, not synthesized")
}

func TestCleaner_DisambiguatesInRowOrder(t *testing.T) {
	g := Group{
		Name: "DSS1",
		DSSValues: []Value{
			StringValue("L_9A_1"),
			StringValue("L_9B_1"),
			StringValue("L_9A_3"),
			StringValue("L_9C_1"),
		},
	}
	rec := NewCleaner(nil).Clean(g)
	assert.Equal(t, "L_9A_1", rec.DSS["alpha"].String())
	assert.Equal(t, "L_9B_1", rec.DSS["beta"].String())
	assert.Equal(t, "L_9A_3", rec.DSS["alpha1"].String())
	assert.Equal(t, "L_9C_1", rec.DSS["gamma"].String())
}
