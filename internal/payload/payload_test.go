package payload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"nil is null", nil, "null"},
		{"string", String("copper-cable"), `"copper-cable"`},
		{"int", Int(5), "5"},
		{"negative int", Int(-3), "-3"},
		{"bool", Bool(true), "true"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"row", Array{String("gear"), Null{}, String("3/2"), Array{Null{}}, Null{}, Int(0)}, `["gear",null,"3/2",[null],null,0]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshalSortsKeys(t *testing.T) {
	obj := Object{
		"version": Int(5),
		"data":    Object{"settings": Object{}, "groups": Array{}},
	}
	out, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"groups":[],"settings":{}},"version":5}`, string(out))
}

func TestMarshalUTF16KeyOrder(t *testing.T) {
	obj := Object{
		"\uE000":     Int(1),
		"\U00010000": Int(2),
	}
	out, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(out))
}

func TestMarshalStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no html escaping", "<a & b>", `"<a & b>"`},
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped backslash kept", `a\u2028`, `"a\\u2028"`},
		{"nfc normalization", "e\u0301", "\"\u00e9\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse([]byte(`{"version":4,"data":[["gear",null,2,[],null,0]]}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, Int(4), obj["version"])

	rows := obj["data"].(Array)
	row := rows[0].(Array)
	assert.Equal(t, String("gear"), row[0])
	assert.True(t, IsNull(row[1]))
	assert.Equal(t, Int(2), row[2])
	assert.Equal(t, Array{}, row[3])
}

func TestParseRejectsFloats(t *testing.T) {
	_, err := Parse([]byte(`[1.5]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFloat))

	_, err = Parse([]byte(`{"a":1e3}`))
	assert.True(t, errors.Is(err, ErrFloat))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = Parse([]byte(`1 2`))
	assert.Error(t, err)

	_, err = Parse([]byte(`99999999999999999999`))
	assert.Error(t, err)
}

func TestRoundTripIsStable(t *testing.T) {
	in := `{"data":{"groups":[{"name":"Factory","rows":[["gear","assembler","1/3",["speed",null],null,2]]}],"settings":{"assemblerOverrides":{"crafting":"assembler"}}},"version":5}`
	v, err := Parse([]byte(in))
	require.NoError(t, err)
	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(String("")))
}
