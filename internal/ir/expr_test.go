package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalExprResolutionOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{"boolean true", `true`, BoolLit(true)},
		{"boolean false", `false`, BoolLit(false)},
		{"integer", `42`, NumberLit(42)},
		{"negative float", `-1.5`, NumberLit(-1.5)},
		{"exponent", `1e3`, NumberLit(1000)},
		{"string", `"bar"`, StringLit("bar")},
		{"string that looks boolean", `"true"`, StringLit("true")},
		{"string that looks numeric", `"1"`, StringLit("1")},
		{"identifier-like string", `"door_open"`, StringLit("door_open")},
		{"leading whitespace", ` 7`, NumberLit(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalExpr([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalExprRejects(t *testing.T) {
	for _, input := range []string{``, `null`, `{}`, `[1]`, `tru`} {
		t.Run(input, func(t *testing.T) {
			_, err := UnmarshalExpr([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestExprsAbsentVersusEmpty(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"energise","coil":"c"}`), &a))
	assert.Nil(t, a.Arguments)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"energise","coil":"c","arguments":[]}`), &a))
	assert.NotNil(t, a.Arguments)
	assert.Empty(t, a.Arguments)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"energise","coil":"c","arguments":[]}`, string(data))
}

func TestIdentEncodesAsString(t *testing.T) {
	data, err := json.Marshal(Exprs{Ident("door_open"), StringLit("x"), NumberLit(2.5), BoolLit(false)})
	require.NoError(t, err)
	assert.Equal(t, `["door_open","x",2.5,false]`, string(data))

	var back Exprs
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, StringLit("door_open"), back[0], "identifiers decode as strings")
}
