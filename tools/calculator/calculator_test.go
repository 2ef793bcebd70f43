package calculator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/tools/calculator"
)

func TestExtractExpression(t *testing.T) {
	require.Equal(t, "2 + 3 * 4", calculator.ExtractExpression("please compute 2 + 3 * 4 for me"))
}

func TestEvalOperatorPrecedence(t *testing.T) {
	v, err := calculator.Eval("2 + 3 * 4")
	require.NoError(t, err)
	require.Equal(t, 14.0, v)
}

func TestEvalParentheses(t *testing.T) {
	v, err := calculator.Eval("(2 + 3) * 4")
	require.NoError(t, err)
	require.Equal(t, 20.0, v)
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := calculator.Eval("1 / 0")
	require.Error(t, err)
}

func TestExecuteFormatsIntegerResult(t *testing.T) {
	tool := calculator.New()
	res, err := tool.Execute(context.Background(), "compute 2 + 3 * 4")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "14", res.Result)
}

func TestExecuteNoExpressionIsInvalidInput(t *testing.T) {
	tool := calculator.New()
	_, err := tool.Execute(context.Background(), "what time is it")
	require.Error(t, err)
}
