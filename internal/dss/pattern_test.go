package dss

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		id   Value
		want string
	}{
		{StringValue("NCRN002376_N066A_1"), "N066_1"},
		{StringValue("NCRN002376_N066B_2"), "N066_2"},
		{StringValue("NCGN013194_N077C_1"), "N077_1"},
		{StringValue("SITE1_N066_1"), "N066_1"},
		{StringValue("  SITE1_N002D_2  "), "N002_2"},
		{StringValue("SITE1_N066A_1_X"), "N066_1"},
		{StringValue("SITE1_N066A"), UnknownPatternKey},
		{StringValue("NOUNDERSCORE"), UnknownPatternKey},
		{StringValue("SITE1_n066a_1"), UnknownPatternKey},
		{StringValue("SITE1_066A_1"), UnknownPatternKey},
		{StringValue("SITE1_N066AB_1"), UnknownPatternKey},
		{NullValue(), UnknownPatternKey},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePattern(tt.id).Key())
		})
	}
}

func TestPatternVariants(t *testing.T) {
	p := ParsePattern(StringValue("NCRN002376_N066A_1"))
	band, ok := p.Band()
	assert.True(t, ok)
	assert.Equal(t, "N066", band)
	carrier, _ := p.Carrier()
	assert.Equal(t, "1", carrier)

	u := ParsePattern(StringValue("bad"))
	assert.False(t, u.Known())
	_, ok = u.Band()
	assert.False(t, ok, "unknown pattern must not expose a band")
}
