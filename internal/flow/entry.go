package flow

import (
	"fmt"

	"github.com/roach88/ratio/internal/gamedata"
	"github.com/roach88/ratio/internal/rational"
)

// Kind is the material kind of an entry.
type Kind uint8

const (
	KindItem Kind = iota
	KindFluid
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindFluid:
		return "fluid"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Role says whether an entry is consumed or produced.
type Role uint8

const (
	RoleIngredient Role = iota
	RoleProduct
)

func (r Role) String() string {
	switch r {
	case RoleIngredient:
		return "ingredient"
	case RoleProduct:
		return "product"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Entry is one material flow. It is a closed variant over Role x Kind:
//   - fluid ingredients use Range (accepted temperatures)
//   - fluid products use Temperature (the point temperature produced)
//   - items use neither
//
// Build entries with the constructors below so unused fields stay zero.
type Entry struct {
	Role        Role
	Kind        Kind
	Name        string
	Range       gamedata.TemperatureRange
	Temperature rational.Rational

	// Amount is a rate per second.
	Amount rational.Rational
}

// ItemIngredient builds a consumed item flow.
func ItemIngredient(name string, amount rational.Rational) Entry {
	return Entry{Role: RoleIngredient, Kind: KindItem, Name: name, Amount: amount}
}

// FluidIngredient builds a consumed fluid flow accepting temperatures in r.
func FluidIngredient(name string, r gamedata.TemperatureRange, amount rational.Rational) Entry {
	return Entry{Role: RoleIngredient, Kind: KindFluid, Name: name, Range: r, Amount: amount}
}

// ItemProduct builds a produced item flow.
func ItemProduct(name string, amount rational.Rational) Entry {
	return Entry{Role: RoleProduct, Kind: KindItem, Name: name, Amount: amount}
}

// FluidProduct builds a produced fluid flow at temperature t.
func FluidProduct(name string, t, amount rational.Rational) Entry {
	return Entry{Role: RoleProduct, Kind: KindFluid, Name: name, Temperature: t, Amount: amount}
}

// sameKey reports whether two entries of the same list merge into one.
func sameKey(a, b Entry) bool {
	if a.Role != b.Role || a.Kind != b.Kind || a.Name != b.Name {
		return false
	}
	switch a.Kind {
	case KindItem:
		return true
	case KindFluid:
		switch a.Role {
		case RoleIngredient:
			return a.Range.Equal(b.Range)
		case RoleProduct:
			return a.Temperature.Equal(b.Temperature)
		}
	}
	return false
}

// satisfies reports whether product can feed ingredient.
func satisfies(product, ingredient Entry) bool {
	if product.Kind != ingredient.Kind || product.Name != ingredient.Name {
		return false
	}
	switch product.Kind {
	case KindItem:
		return true
	case KindFluid:
		return ingredient.Range.Contains(product.Temperature)
	}
	return false
}

// String renders "name@temp: amount" style text for diagnostics.
func (e Entry) String() string {
	switch {
	case e.Kind == KindFluid && e.Role == RoleProduct:
		return fmt.Sprintf("%s@%s: %s", e.Name, e.Temperature, e.Amount)
	case e.Kind == KindFluid && (e.Range.Min != nil || e.Range.Max != nil):
		return fmt.Sprintf("%s@[%s,%s]: %s", e.Name, bound(e.Range.Min), bound(e.Range.Max), e.Amount)
	default:
		return fmt.Sprintf("%s: %s", e.Name, e.Amount)
	}
}

func bound(b *rational.Rational) string {
	if b == nil {
		return "*"
	}
	return b.String()
}
