// Package gamedata defines the recipe, machine, module and item records the
// calculator consumes, the Repository contract used to resolve them by name,
// and loaders that build an in-memory Catalog from YAML or CUE data files.
package gamedata

import (
	"errors"
	"fmt"

	"github.com/roach88/ratio/internal/rational"
)

// ItemType distinguishes solid items from fluids.
type ItemType string

const (
	ItemTypeItem  ItemType = "item"
	ItemTypeFluid ItemType = "fluid"
)

// Item is a material that can flow between machines.
type Item struct {
	Name string
	Type ItemType

	// DefaultTemperature applies to fluid products that do not name one.
	DefaultTemperature rational.Rational
}

// TemperatureRange bounds the fluid temperatures an ingredient accepts.
// A nil bound is open.
type TemperatureRange struct {
	Min *rational.Rational
	Max *rational.Rational
}

// Contains reports whether t lies within the range, bounds inclusive.
func (r TemperatureRange) Contains(t rational.Rational) bool {
	if r.Min != nil && t.Less(*r.Min) {
		return false
	}
	if r.Max != nil && r.Max.Less(t) {
		return false
	}
	return true
}

// Equal reports whether both bounds are identical.
func (r TemperatureRange) Equal(o TemperatureRange) bool {
	return boundEqual(r.Min, o.Min) && boundEqual(r.Max, o.Max)
}

func boundEqual(a, b *rational.Rational) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Ingredient is one input of a recipe, per craft.
type Ingredient struct {
	Name        string
	Type        ItemType
	Amount      rational.Rational
	Temperature TemperatureRange
}

// Product is one output of a recipe, per craft.
type Product struct {
	Name        string
	Type        ItemType
	Amount      rational.Rational
	Temperature rational.Rational
}

// Recipe transforms ingredients into products in CraftingTime seconds.
type Recipe struct {
	Name         string
	Category     string
	CraftingTime rational.Rational
	Ingredients  []Ingredient
	Products     []Product
}

// Machine is an entity able to craft recipes of its categories.
type Machine struct {
	Name          string
	Categories    []string
	CraftingSpeed rational.Rational
	ModuleSlots   int
}

// Crafts reports whether m can run recipes of the given category.
func (m *Machine) Crafts(category string) bool {
	for _, c := range m.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Effects are additive module bonuses. A zero field has no effect.
type Effects struct {
	Speed        rational.Rational
	Productivity rational.Rational
	Consumption  rational.Rational
	Pollution    rational.Rational
}

// Module modifies the machine it is inserted into, or the machines around
// the beacon carrying it.
type Module struct {
	Name    string
	Effects Effects
}

// Repository resolves game-data records by name.
type Repository interface {
	Recipe(name string) (*Recipe, error)
	Machine(name string) (*Machine, error)
	Module(name string) (*Module, error)
	Item(name string) (*Item, error)

	// DefaultMachineFor returns the first known machine of a category,
	// ignoring any user settings.
	DefaultMachineFor(category string) (*Machine, error)
}

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a name absent from the repository.
type NotFoundError struct {
	Kind string // "recipe" | "machine" | "module" | "item" | "category"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
