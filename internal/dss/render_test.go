package dss

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute_LongestTokenFirst(t *testing.T) {
	m := NewPlaceholderMap("x")
	m.Set("N00X", StringValue("base"))
	m.Set("N00XA", StringValue("full"))

	out, n := Substitute("cell=N00XA;", m)
	assert.Equal(t, "cell=full;", out)
	assert.Equal(t, 1, n)
}

func TestSubstitute_CountsOccurrences(t *testing.T) {
	m := NewPlaceholderMap("x")
	m.Set("xxLTE_Site_IDxx", StringValue("WCL1"))
	m.Set("xxLTE_Site_IDxx_XA_1", StringValue("WCL1_9A_1"))
	m.Set("unused", StringValue("nope"))
	m.Set("N00X", NullValue())

	out, n := Substitute("a=xxLTE_Site_IDxx_XA_1 b=xxLTE_Site_IDxx c=xxLTE_Site_IDxx d=[N00X]", m)
	assert.Equal(t, "a=WCL1_9A_1 b=WCL1 c=WCL1 d=[]", out)
	assert.Equal(t, 4, n)
}

func TestSubstitute_NullRendersEmpty(t *testing.T) {
	m := NewPlaceholderMap("x")
	m.Set("LTE_cellidD", NullValue())
	m.Set("essScPairId_D", FloatValue(2225))

	out, _ := Substitute("[LTE_cellidD][essScPairId_D]", m)
	assert.Equal(t, "[][2225]", out)
	assert.NotContains(t, out, "null")
	assert.NotContains(t, out, "None")
	assert.NotContains(t, out, "nan")
}

func TestRenderer_SelectTemplate(t *testing.T) {
	templates := TemplateSet{FourSectorTemplate: "4", ThreeSectorTemplate: "3"}
	dual := NewRenderer(templates, DefaultOptions(), nil)

	three := NewPlaceholderMap("N066_1")
	for _, tok := range FourSectorTokens {
		three.Set(tok, NullValue())
	}
	assert.Equal(t, ThreeSectorTemplate, dual.SelectTemplate(three))

	for _, tok := range FourSectorTokens {
		four := NewPlaceholderMap("N066_1")
		four.Set(tok, IntValue(1))
		assert.Equal(t, FourSectorTemplate, dual.SelectTemplate(four), tok)
	}

	opts := DefaultOptions()
	opts.Variant = VariantSingle
	opts.SingleTemplate = "site.txt"
	single := NewRenderer(TemplateSet{"site.txt": "x"}, opts, nil)
	assert.Equal(t, "site.txt", single.SelectTemplate(three))
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(TemplateSet{ThreeSectorTemplate: "node=xx5G_NR_Node_Namexx id=xx5G_NR_gNBIDxx"}, DefaultOptions(), nil)
	m := NewPlaceholderMap("N066_1")
	m.Set(TokenNRNodeName, StringValue("NCGN003194"))
	m.Set(TokenNRGNBID, IntValue(1001))

	out, err := r.Render(m)
	require.NoError(t, err)
	assert.Equal(t, "N066_1", out.VariableName)
	assert.Equal(t, ThreeSectorTemplate, out.TemplateUsed)
	assert.Equal(t, "N066_1_output.txt", out.OutputFile)
	assert.Equal(t, 2, out.Replacements)
	assert.Equal(t, "node=NCGN003194 id=1001", out.Content)
}

func TestRenderer_TemplateMissing(t *testing.T) {
	r := NewRenderer(TemplateSet{ThreeSectorTemplate: "x"}, DefaultOptions(), nil)
	m := NewPlaceholderMap("N066_2")
	m.Set("LTE_cellidD", IntValue(9))

	_, err := r.Render(m)
	var tm *TemplateMissingError
	require.True(t, errors.As(err, &tm))
	assert.Equal(t, FourSectorTemplate, tm.Template)
	assert.Equal(t, "N066_2", tm.Group)
}
