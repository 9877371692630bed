package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbrizzi/reagent/model"
)

func TestDateMathAdd(t *testing.T) {
	tl := NewDateMath(fixedResolver(t, model.NewScripted()))

	out, err := tl.Call(context.Background(), map[string]any{
		"operation": "add", "date": "2024-01-10", "days": float64(5),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"operation": "add", "base": "2024-01-10", "days": 5, "result": "2024-01-15",
	}, out)
}

func TestDateMathSub(t *testing.T) {
	tl := NewDateMath(fixedResolver(t, model.NewScripted()))

	out, err := tl.Call(context.Background(), map[string]any{
		"operation": "sub", "date": "2024-01-10", "days": float64(10),
	})
	require.NoError(t, err)
	res := out.(map[string]any)
	assert.Equal(t, "2023-12-31", res["result"])
}

func TestDateMathDiffAndRange(t *testing.T) {
	tl := NewDateMath(fixedResolver(t, model.NewScripted()))

	out, err := tl.Call(context.Background(), map[string]any{
		"operation": "diff", "date": "2024-01-01", "end_date": "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, out.(map[string]any)["days"])

	out, err = tl.Call(context.Background(), map[string]any{
		"operation": "range", "date": "2024-01-01", "end_date": "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 31, out.(map[string]any)["days_inclusive"])
}

func TestDateMathDiffIsSigned(t *testing.T) {
	tl := NewDateMath(fixedResolver(t, model.NewScripted()))

	out, err := tl.Call(context.Background(), map[string]any{
		"operation": "diff", "date": "2024-01-31", "end_date": "2024-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, -30, out.(map[string]any)["days"])
}

func TestDateMathResolvesNaturalDates(t *testing.T) {
	tl := NewDateMath(fixedResolver(t, model.NewScripted("2024-06-02")))

	out, err := tl.Call(context.Background(), map[string]any{
		"operation": "add", "date": "domani", "days": float64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", out.(map[string]any)["result"])
}

func TestDateMathMissingArguments(t *testing.T) {
	tl := NewDateMath(fixedResolver(t, model.NewScripted()))

	_, err := tl.Call(context.Background(), map[string]any{"operation": "add", "date": "2024-01-01"})
	assert.Error(t, err)

	_, err = tl.Call(context.Background(), map[string]any{"operation": "diff", "date": "2024-01-01"})
	assert.Error(t, err)
}

func TestDateMathUnknownOperation(t *testing.T) {
	tl := NewDateMath(fixedResolver(t, model.NewScripted()))

	_, err := tl.Call(context.Background(), map[string]any{"operation": "multiply"})
	assert.Error(t, err)
}
