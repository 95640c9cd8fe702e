package dss

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	wb := &Workbook{Tables: []*Table{
		table("Cover", []string{"x"}),
		table(" 5g info ", infoHeaders,
			infoRow("NCGN003194_N066A_1", "WCL03194_9A_1", "SEF_N066A", 1),
			infoRow("NCGN003194_N066B_1", " no ", "SEF_N066B", 2),
			infoRow("NCGN003194_N066C_1", "", "SEF_N066C", 3),
			infoRow("NCGN003194_N066D_1", "WCL03194_9D_1", "SEF_N066D", 4),
		),
	}}

	out, err := NewExtractor(DefaultOptions(), nil).Extract(wb)
	require.NoError(t, err)

	assert.Equal(t, " 5g info ", out.Sheet)
	assert.Equal(t, "DSS", out.Column)
	assert.Equal(t, 4, out.Total)
	assert.Equal(t, 1, out.Excluded)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "WCL03194_9A_1", out.Rows[0].Get("DSS").String())
	assert.Equal(t, "WCL03194_9D_1", out.Rows[1].Get("DSS").String())
}

func TestExtractor_CustomExclusion(t *testing.T) {
	wb := &Workbook{Tables: []*Table{
		table("5G Info", []string{"dss ", "NRCellDU"},
			[]any{"skip", "S_N066A_1"},
			[]any{"NO", "S_N066B_1"},
		),
	}}
	opts := DefaultOptions()
	opts.Exclude = "SKIP"

	out, err := NewExtractor(opts, nil).Extract(wb)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "NO", out.Rows[0].Get("dss ").String())
}

func TestExtractor_EmptyResultIsNotAnError(t *testing.T) {
	wb := &Workbook{Tables: []*Table{
		table("5G Info", []string{"DSS"}, []any{"NO"}, []any{nil}),
	}}
	out, err := NewExtractor(DefaultOptions(), nil).Extract(wb)
	require.NoError(t, err)
	assert.Empty(t, out.Rows)
}

func TestExtractor_NotFound(t *testing.T) {
	tests := []struct {
		name      string
		wb        *Workbook
		kind      string
		available []string
	}{
		{
			name:      "worksheet",
			wb:        &Workbook{Tables: []*Table{table("Sheet1", nil), table("Mixed Mode Info", nil)}},
			kind:      "worksheet",
			available: []string{"Sheet1", "Mixed Mode Info"},
		},
		{
			name:      "column",
			wb:        &Workbook{Tables: []*Table{table("5G Info", []string{"gNBId", "NRCellDU"})}},
			kind:      "column",
			available: []string{"gNBId", "NRCellDU"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor(DefaultOptions(), nil).Extract(tt.wb)
			var nf *NotFoundError
			require.True(t, errors.As(err, &nf))
			assert.Equal(t, tt.kind, nf.Kind)
			assert.Equal(t, tt.available, nf.Available)
			for _, name := range tt.available {
				assert.Contains(t, err.Error(), name)
			}
		})
	}
}
