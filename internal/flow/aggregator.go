package flow

import (
	"errors"
	"fmt"

	"github.com/roach88/ratio/internal/gamedata"
	"github.com/roach88/ratio/internal/rational"
)

// Result is a snapshot of merged flows. After Reduce the amounts are net
// and no entry is zero.
type Result struct {
	Ingredients []Entry
	Products    []Entry
}

// IsEmpty reports whether the result has no flows at all.
func (r Result) IsEmpty() bool {
	return len(r.Ingredients) == 0 && len(r.Products) == 0
}

// Aggregator accumulates the flows of many rows.
type Aggregator struct {
	ingredients []Entry
	products    []Entry
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddRow scales the row's recipe by its machines and effects and merges the
// resulting flows. A recipe with a zero crafting time is a data error and
// yields rational.ErrDivisionByZero.
func (a *Aggregator) AddRow(row Row) error {
	if row.Recipe == nil {
		return errors.New("add row: recipe is required")
	}
	if row.Machine == nil {
		return fmt.Errorf("add row %q: machine is required", row.Recipe.Name)
	}

	effects := ComputeEffects(row)

	perCraft, err := row.Recipe.CraftingTime.Invert()
	if err != nil {
		return fmt.Errorf("add row %q: crafting time: %w", row.Recipe.Name, err)
	}
	ingredientMultiplier := perCraft.
		Mul(row.Count).
		Mul(row.Machine.CraftingSpeed).
		Mul(effects.Speed)
	productMultiplier := ingredientMultiplier.Mul(effects.Productivity)

	for _, in := range row.Recipe.Ingredients {
		amount := in.Amount.Mul(ingredientMultiplier)
		if in.Type == gamedata.ItemTypeFluid {
			a.AddIngredient(FluidIngredient(in.Name, in.Temperature, amount))
		} else {
			a.AddIngredient(ItemIngredient(in.Name, amount))
		}
	}
	for _, out := range row.Recipe.Products {
		amount := out.Amount.Mul(productMultiplier)
		if out.Type == gamedata.ItemTypeFluid {
			a.AddProduct(FluidProduct(out.Name, out.Temperature, amount))
		} else {
			a.AddProduct(ItemProduct(out.Name, amount))
		}
	}
	return nil
}

// AddIngredient merges e into the ingredient totals.
func (a *Aggregator) AddIngredient(e Entry) {
	e.Role = RoleIngredient
	a.ingredients = merge(a.ingredients, e)
}

// AddProduct merges e into the product totals.
func (a *Aggregator) AddProduct(e Entry) {
	e.Role = RoleProduct
	a.products = merge(a.products, e)
}

func merge(list []Entry, e Entry) []Entry {
	for i := range list {
		if sameKey(list[i], e) {
			list[i].Amount = list[i].Amount.Add(e.Amount)
			return list
		}
	}
	return append(list, e)
}

// Totals returns a copy of the merged, unreduced flows.
func (a *Aggregator) Totals() Result {
	return Result{
		Ingredients: append([]Entry(nil), a.ingredients...),
		Products:    append([]Entry(nil), a.products...),
	}
}

// Reduce cancels products against the ingredients they satisfy and drops
// every flow that reaches zero. The aggregator itself is left unchanged.
//
// Products are visited in insertion order, and for each product the
// ingredients in insertion order. The smaller of a matching pair is zeroed
// and subtracted from the larger.
func (a *Aggregator) Reduce() Result {
	r := a.Totals()

	for i := range r.Products {
		for j := range r.Ingredients {
			p, in := &r.Products[i], &r.Ingredients[j]
			if p.Amount.IsZero() || in.Amount.IsZero() {
				continue
			}
			if !satisfies(*p, *in) {
				continue
			}
			switch p.Amount.Cmp(in.Amount) {
			case 1:
				p.Amount = p.Amount.Sub(in.Amount)
				in.Amount = rational.Zero
			case -1:
				in.Amount = in.Amount.Sub(p.Amount)
				p.Amount = rational.Zero
			default:
				p.Amount = rational.Zero
				in.Amount = rational.Zero
			}
		}
	}

	r.Ingredients = dropZero(r.Ingredients)
	r.Products = dropZero(r.Products)
	return r
}

func dropZero(list []Entry) []Entry {
	out := list[:0]
	for _, e := range list {
		if !e.Amount.IsZero() {
			out = append(out, e)
		}
	}
	return out
}
