package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"copper_cable", "barrel_cancel"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsFailedAssertion(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/copper_cable.yaml")
	require.NoError(t, err)
	s.Assertions = []Assertion{{Type: AssertProduct, Name: "copper-cable", Amount: "5"}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "amounts 4")
}

func TestRun_ExpectErrorMismatch(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unresolved_fragment.yaml")
	require.NoError(t, err)
	s.ExpectError = "MALFORMED_PAYLOAD"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "got UNRESOLVED_REFERENCE")
}

func TestRun_ExpectErrorButDecoded(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/v1_fragment.yaml")
	require.NoError(t, err)
	s.ExpectError = "MALFORMED_PAYLOAD"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "fragment decoded")
}

func TestRun_MissingGameData(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Data: filepath.Join(t.TempDir(), "none.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load game data")
}

func TestRun_UnknownRecipeInGroups(t *testing.T) {
	s := &Scenario{
		Name: "bad",
		Data: "testdata/gamedata.yaml",
		Groups: []GroupDef{{
			Name: "Main",
			Rows: []RowDef{{Recipe: "nuclear-reactor", Count: "1"}},
		}},
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nuclear-reactor")
}

func TestRun_PayloadCarriesGroups(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/steam.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.Contains(t, result.Payload, `"name":"Power"`)
	assert.Equal(t, []string{"water-barrel: 15/4"}, result.Ingredients)
	assert.Equal(t, []string{"steam@165: 60", "water@15: 255/2", "empty-barrel: 15/4"}, result.Products)
}
