package dss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		text string
	}{
		{"", KindNull, ""},
		{"   ", KindNull, ""},
		{"42", KindInt, "42"},
		{" 42 ", KindInt, "42"},
		{"-7", KindInt, "-7"},
		{"648672.0", KindFloat, "648672"},
		{"3.25", KindFloat, "3.25"},
		{"NaN", KindString, "NaN"},
		{"Inf", KindString, "Inf"},
		{"WCL03194_9A_1", KindString, "WCL03194_9A_1"},
		{"YES", KindString, "YES"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseValue(tt.raw)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.text, v.String())
		})
	}
}

func TestValueNeverRendersNullLiterals(t *testing.T) {
	for _, v := range []Value{NullValue(), FloatValue(math.NaN()), FloatValue(math.Inf(1))} {
		assert.Equal(t, "", v.String())
		assert.True(t, v.IsNull())
	}
}

func TestValueInt(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want int64
		ok   bool
	}{
		{"int", IntValue(12), 12, true},
		{"integral float", FloatValue(12.0), 12, true},
		{"fractional float", FloatValue(12.5), 0, false},
		{"numeric string", StringValue(" 305 "), 305, true},
		{"text", StringValue("n/a"), 0, false},
		{"null", NullValue(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Int()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, KindString, StringValue("n/a").AsInt().Kind())
	assert.Equal(t, KindInt, FloatValue(7).AsInt().Kind())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, IntValue(5).Equal(FloatValue(5)))
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("5").Equal(IntValue(5)))
	assert.False(t, NullValue().Equal(NullValue()))
	assert.False(t, StringValue("a ").Equal(StringValue("a")))
}

func TestValueMarshalJSON(t *testing.T) {
	for v, want := range map[Value]string{
		NullValue():        "null",
		IntValue(3):        "3",
		FloatValue(1.5):    "1.5",
		StringValue(`a"b`): `"a\"b"`,
	} {
		b, err := v.MarshalJSON()
		assert.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
}
