package gamedata

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Catalog is an immutable in-memory Repository.
// Names are NFC-normalized on insert and on lookup.
type Catalog struct {
	items    map[string]*Item
	recipes  map[string]*Recipe
	machines map[string]*Machine
	modules  map[string]*Module

	// byCategory keeps machines in declaration order per category.
	byCategory map[string][]*Machine
}

var _ Repository = (*Catalog)(nil)

// NewCatalog indexes the given records. Duplicate names are rejected.
func NewCatalog(items []Item, recipes []Recipe, machines []Machine, modules []Module) (*Catalog, error) {
	c := &Catalog{
		items:      make(map[string]*Item, len(items)),
		recipes:    make(map[string]*Recipe, len(recipes)),
		machines:   make(map[string]*Machine, len(machines)),
		modules:    make(map[string]*Module, len(modules)),
		byCategory: make(map[string][]*Machine),
	}

	for i := range items {
		it := items[i]
		it.Name = normalize(it.Name)
		if _, dup := c.items[it.Name]; dup {
			return nil, fmt.Errorf("duplicate item %q", it.Name)
		}
		c.items[it.Name] = &it
	}
	for i := range recipes {
		r := recipes[i]
		r.Name = normalize(r.Name)
		if _, dup := c.recipes[r.Name]; dup {
			return nil, fmt.Errorf("duplicate recipe %q", r.Name)
		}
		c.recipes[r.Name] = &r
	}
	for i := range machines {
		m := machines[i]
		m.Name = normalize(m.Name)
		if _, dup := c.machines[m.Name]; dup {
			return nil, fmt.Errorf("duplicate machine %q", m.Name)
		}
		c.machines[m.Name] = &m
		for _, cat := range m.Categories {
			c.byCategory[cat] = append(c.byCategory[cat], &m)
		}
	}
	for i := range modules {
		m := modules[i]
		m.Name = normalize(m.Name)
		if _, dup := c.modules[m.Name]; dup {
			return nil, fmt.Errorf("duplicate module %q", m.Name)
		}
		c.modules[m.Name] = &m
	}

	return c, nil
}

func normalize(name string) string {
	return norm.NFC.String(name)
}

// Recipe implements Repository.
func (c *Catalog) Recipe(name string) (*Recipe, error) {
	if r, ok := c.recipes[normalize(name)]; ok {
		return r, nil
	}
	return nil, &NotFoundError{Kind: "recipe", Name: name}
}

// Machine implements Repository.
func (c *Catalog) Machine(name string) (*Machine, error) {
	if m, ok := c.machines[normalize(name)]; ok {
		return m, nil
	}
	return nil, &NotFoundError{Kind: "machine", Name: name}
}

// Module implements Repository.
func (c *Catalog) Module(name string) (*Module, error) {
	if m, ok := c.modules[normalize(name)]; ok {
		return m, nil
	}
	return nil, &NotFoundError{Kind: "module", Name: name}
}

// Item implements Repository.
func (c *Catalog) Item(name string) (*Item, error) {
	if it, ok := c.items[normalize(name)]; ok {
		return it, nil
	}
	return nil, &NotFoundError{Kind: "item", Name: name}
}

// DefaultMachineFor implements Repository.
func (c *Catalog) DefaultMachineFor(category string) (*Machine, error) {
	ms := c.byCategory[category]
	if len(ms) == 0 {
		return nil, &NotFoundError{Kind: "category", Name: category}
	}
	return ms[0], nil
}

// MachinesFor lists every machine of a category in declaration order.
func (c *Catalog) MachinesFor(category string) []*Machine {
	return append([]*Machine(nil), c.byCategory[category]...)
}
