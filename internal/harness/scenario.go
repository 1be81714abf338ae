package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ratio/internal/state"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Data is the game data file. Relative paths resolve against the
	// scenario file's directory.
	Data string `yaml:"data"`

	// Overrides maps recipe categories to their default machine.
	Overrides map[string]string `yaml:"overrides,omitempty"`

	// Groups builds the state row by row. The first group replaces the
	// default group.
	Groups []GroupDef `yaml:"groups,omitempty"`

	// Fragment builds the state by decoding fragment text instead.
	Fragment string `yaml:"fragment,omitempty"`

	// ExpectError is the codec error code decoding Fragment must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the net flow.
	Assertions []Assertion `yaml:"assertions"`
}

// GroupDef is one named group of rows.
type GroupDef struct {
	Name string    `yaml:"name"`
	Rows []RowDef `yaml:"rows"`
}

// RowDef names a row's recipe, machine and modules.
type RowDef struct {
	Recipe string `yaml:"recipe"`

	// Machine defaults to the category's default machine.
	Machine string `yaml:"machine,omitempty"`

	// Count is fraction or decimal text.
	Count string `yaml:"count"`

	// Modules holds one entry per slot; null is an empty slot.
	Modules []*string `yaml:"modules,omitempty"`

	Beacon      string `yaml:"beacon,omitempty"`
	BeaconCount int    `yaml:"beacon_count,omitempty"`
}

// Assertion validates the reduced net flow.
type Assertion struct {
	// Type is one of ingredient, product, absent, empty, count.
	Type string `yaml:"type"`

	// Name is the item or fluid (ingredient, product, absent).
	Name string `yaml:"name,omitempty"`

	// Amount is the expected exact amount as fraction text. Empty matches
	// any amount.
	Amount string `yaml:"amount,omitempty"`

	// Role selects the list for count: ingredients or products.
	Role string `yaml:"role,omitempty"`

	// Count is the expected number of entries (count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertIngredient = "ingredient"
	AssertProduct    = "product"
	AssertAbsent     = "absent"
	AssertEmpty      = "empty"
	AssertCount      = "count"
)

// Roles accepted by count assertions.
const (
	RoleIngredients = "ingredients"
	RoleProducts    = "products"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Data != "" && !filepath.IsAbs(scenario.Data) {
		scenario.Data = filepath.Join(filepath.Dir(path), scenario.Data)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Data == "" {
		return fmt.Errorf("data is required")
	}
	if len(s.Groups) > 0 && s.Fragment != "" {
		return fmt.Errorf("groups and fragment are mutually exclusive")
	}
	if s.ExpectError != "" {
		if s.Fragment == "" {
			return fmt.Errorf("expect_error requires a fragment")
		}
		switch state.CodecErrorCode(s.ExpectError) {
		case state.ErrCodeUnknownSchemaVersion, state.ErrCodeMalformedPayload, state.ErrCodeUnresolvedReference:
		default:
			return fmt.Errorf("expect_error: unknown code %q", s.ExpectError)
		}
	}

	for gi, g := range s.Groups {
		for ri, r := range g.Rows {
			if r.Recipe == "" {
				return fmt.Errorf("groups[%d].rows[%d]: recipe is required", gi, ri)
			}
			if r.Count == "" {
				return fmt.Errorf("groups[%d].rows[%d]: count is required", gi, ri)
			}
			if r.BeaconCount < 0 {
				return fmt.Errorf("groups[%d].rows[%d]: beacon_count must be non-negative", gi, ri)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertIngredient, AssertProduct, AssertAbsent:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for %s", index, a.Type)
		}
	case AssertEmpty:
	case AssertCount:
		if a.Role != RoleIngredients && a.Role != RoleProducts {
			return fmt.Errorf("assertions[%d]: role must be %q or %q for count", index, RoleIngredients, RoleProducts)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
