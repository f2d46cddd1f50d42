package tool

import (
	"testing"

	"github.com/hupe1980/agentscript/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Precedence(t *testing.T) {
	calc := NewCalculatorTool()

	cases := []struct {
		expr string
		want float64
	}{
		{"2 + 2 * 3", 8},
		{"2 * 3 + 2", 8},
		{"(2 + 2) * 3", 12},
		{"10 / 2 - 3", 2},
		{"10 - 2 - 3", 5},
		{"-4 + 10", 6},
		{"2 * -3", -6},
		{"1.5 * 4", 6},
		{"42", 42},
		{"((1 + 2) * (3 + 4))", 21},
	}
	for _, tc := range cases {
		out, err := calc.Call(testContext(), []core.Value{core.String(tc.expr)})
		require.NoError(t, err, "expr %q", tc.expr)
		assert.Equal(t, core.Number(tc.want), out, "expr %q", tc.expr)
	}
}

func TestCalculator_Errors(t *testing.T) {
	calc := NewCalculatorTool()

	for _, expr := range []string{
		"1 / 0",
		"2 +",
		"(1 + 2",
		"hello",
		"1 2",
		"",
	} {
		_, err := calc.Call(testContext(), []core.Value{core.String(expr)})
		assert.Error(t, err, "expr %q should fail", expr)
	}
}

func TestCalculator_RequiresStringArgument(t *testing.T) {
	calc := NewCalculatorTool()

	_, err := calc.Call(testContext(), nil)
	require.Error(t, err)

	_, err = calc.Call(testContext(), []core.Value{core.Bool(true)})
	require.Error(t, err)
}
