package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/ratio/internal/flow"
	"github.com/roach88/ratio/internal/rational"
)

// AssertionError is returned when an assertion fails.
// It includes the net flow to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Net      flow.Result
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nNet flow:\n")
	for _, entry := range e.Net.Ingredients {
		fmt.Fprintf(&buf, "  in  %s\n", entry)
	}
	for _, entry := range e.Net.Products {
		fmt.Fprintf(&buf, "  out %s\n", entry)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against net and returns the
// failure messages.
func EvaluateAssertions(net flow.Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(net, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(net flow.Result, a Assertion) error {
	switch a.Type {
	case AssertIngredient:
		return assertEntry(net, net.Ingredients, a)
	case AssertProduct:
		return assertEntry(net, net.Products, a)
	case AssertAbsent:
		return assertAbsent(net, a)
	case AssertEmpty:
		if !net.IsEmpty() {
			return &AssertionError{
				Type:     AssertEmpty,
				Expected: "no ingredients and no products",
				Actual:   fmt.Sprintf("%d ingredients, %d products", len(net.Ingredients), len(net.Products)),
				Net:      net,
			}
		}
		return nil
	case AssertCount:
		return assertCount(net, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertEntry checks that some entry named a.Name exists, with a.Amount
// when given. Fluids at several temperatures match if any entry does.
func assertEntry(net flow.Result, entries []flow.Entry, a Assertion) error {
	var want rational.Rational
	if a.Amount != "" {
		var err error
		if want, err = rational.Parse(a.Amount); err != nil {
			return fmt.Errorf("amount %q: %w", a.Amount, err)
		}
	}

	var found []string
	for _, e := range entries {
		if e.Name != a.Name {
			continue
		}
		if a.Amount == "" || e.Amount.Equal(want) {
			return nil
		}
		found = append(found, e.Amount.String())
	}

	expected := a.Name
	if a.Amount != "" {
		expected += " at " + want.String()
	}
	actual := "not found"
	if len(found) > 0 {
		actual = "amounts " + strings.Join(found, ", ")
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Net: net}
}

func assertAbsent(net flow.Result, a Assertion) error {
	for _, list := range [][]flow.Entry{net.Ingredients, net.Products} {
		for _, e := range list {
			if e.Name == a.Name {
				return &AssertionError{
					Type:     AssertAbsent,
					Expected: a.Name + " absent",
					Actual:   e.String(),
					Net:      net,
				}
			}
		}
	}
	return nil
}

func assertCount(net flow.Result, a Assertion) error {
	entries := net.Ingredients
	if a.Role == RoleProducts {
		entries = net.Products
	}
	if len(entries) != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d %s", a.Count, a.Role),
			Actual:   fmt.Sprintf("%d %s", len(entries), a.Role),
			Net:      net,
		}
	}
	return nil
}
