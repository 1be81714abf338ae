package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ratio/internal/payload"
)

// Snapshot renders a result as deterministic JSON for golden comparison.
// The saved payload is embedded as a tree, not as escaped text.
func Snapshot(name string, result *Result) ([]byte, error) {
	saved, err := payload.Parse([]byte(result.Payload))
	if err != nil {
		return nil, fmt.Errorf("parse saved payload: %w", err)
	}
	return payload.Marshal(payload.Object{
		"name":        payload.String(name),
		"ingredients": stringArray(result.Ingredients),
		"products":    stringArray(result.Products),
		"payload":     saved,
	})
}

func stringArray(ss []string) payload.Array {
	arr := make(payload.Array, len(ss))
	for i, s := range ss {
		arr[i] = payload.String(s)
	}
	return arr
}

// RunWithGolden executes a scenario and compares its net flow and saved
// payload against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
