package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ratio/internal/flow"
	"github.com/roach88/ratio/internal/rational"
)

func sampleNet() flow.Result {
	return flow.Result{
		Ingredients: []flow.Entry{
			flow.ItemIngredient("copper-plate", rational.MustNew(9, 2)),
		},
		Products: []flow.Entry{
			flow.ItemProduct("copper-cable", rational.FromInt(9)),
			flow.FluidProduct("steam", rational.FromInt(165), rational.FromInt(60)),
			flow.FluidProduct("steam", rational.FromInt(500), rational.FromInt(10)),
		},
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertIngredient, Name: "copper-plate", Amount: "9/2"},
		{Type: AssertIngredient, Name: "copper-plate", Amount: "4.5"},
		{Type: AssertIngredient, Name: "copper-plate"},
		{Type: AssertProduct, Name: "copper-cable", Amount: "9"},
		{Type: AssertProduct, Name: "steam", Amount: "10"},
		{Type: AssertAbsent, Name: "iron-plate"},
		{Type: AssertCount, Role: RoleIngredients, Count: 1},
		{Type: AssertCount, Role: RoleProducts, Count: 3},
	}
	assert.Empty(t, EvaluateAssertions(sampleNet(), assertions))
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		contains  string
	}{
		{"wrong amount", Assertion{Type: AssertIngredient, Name: "copper-plate", Amount: "4"}, "amounts 9/2"},
		{"missing ingredient", Assertion{Type: AssertIngredient, Name: "iron-plate"}, "not found"},
		{"product listed as ingredient", Assertion{Type: AssertIngredient, Name: "copper-cable"}, "not found"},
		{"present", Assertion{Type: AssertAbsent, Name: "steam"}, "steam@165: 60"},
		{"not empty", Assertion{Type: AssertEmpty}, "1 ingredients, 3 products"},
		{"count", Assertion{Type: AssertCount, Role: RoleProducts, Count: 2}, "Actual: 3 products"},
		{"bad amount text", Assertion{Type: AssertProduct, Name: "steam", Amount: "lots"}, "amount \"lots\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(sampleNet(), []Assertion{tt.assertion})
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], "assertions[0]")
			assert.Contains(t, failures[0], tt.contains)
		})
	}
}

func TestEvaluateAssertions_EmptyNet(t *testing.T) {
	failures := EvaluateAssertions(flow.Result{}, []Assertion{
		{Type: AssertEmpty},
		{Type: AssertAbsent, Name: "water"},
		{Type: AssertCount, Role: RoleIngredients, Count: 0},
	})
	assert.Empty(t, failures)
}

func TestAssertionError_ListsNetFlow(t *testing.T) {
	err := &AssertionError{Type: AssertEmpty, Expected: "nothing", Actual: "something", Net: sampleNet()}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: empty")
	assert.Contains(t, msg, "in  copper-plate: 9/2")
	assert.Contains(t, msg, "out steam@500: 10")
}
