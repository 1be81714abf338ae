package gamedata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ratio/internal/rational"
)

// dataFile is the on-disk shape shared by YAML, JSON and CUE data files.
// Quantities are floats here and become exact fractions on load.
type dataFile struct {
	Items    []itemDTO    `yaml:"items" json:"items"`
	Recipes  []recipeDTO  `yaml:"recipes" json:"recipes"`
	Machines []machineDTO `yaml:"machines" json:"machines"`
	Modules  []moduleDTO  `yaml:"modules" json:"modules"`
}

type itemDTO struct {
	Name               string   `yaml:"name" json:"name"`
	Type               string   `yaml:"type" json:"type"`
	DefaultTemperature *float64 `yaml:"default_temperature,omitempty" json:"default_temperature,omitempty"`
}

type ingredientDTO struct {
	Name           string   `yaml:"name" json:"name"`
	Amount         float64  `yaml:"amount" json:"amount"`
	MinTemperature *float64 `yaml:"minimum_temperature,omitempty" json:"minimum_temperature,omitempty"`
	MaxTemperature *float64 `yaml:"maximum_temperature,omitempty" json:"maximum_temperature,omitempty"`
}

type productDTO struct {
	Name        string   `yaml:"name" json:"name"`
	Amount      float64  `yaml:"amount" json:"amount"`
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
}

type recipeDTO struct {
	Name        string          `yaml:"name" json:"name"`
	Category    string          `yaml:"category" json:"category"`
	Energy      float64         `yaml:"energy" json:"energy"`
	Ingredients []ingredientDTO `yaml:"ingredients" json:"ingredients"`
	Products    []productDTO    `yaml:"products" json:"products"`
}

type machineDTO struct {
	Name          string   `yaml:"name" json:"name"`
	Categories    []string `yaml:"categories" json:"categories"`
	CraftingSpeed float64  `yaml:"crafting_speed" json:"crafting_speed"`
	ModuleSlots   int      `yaml:"module_slots" json:"module_slots"`
}

type moduleDTO struct {
	Name    string             `yaml:"name" json:"name"`
	Effects map[string]float64 `yaml:"effects" json:"effects"`
}

// LoadError reports a malformed data file, with a source position when the
// underlying decoder provides one.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadFile reads a data file, choosing the decoder by extension.
// .cue files go through CUE; everything else is parsed as YAML (a JSON
// superset).
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game data: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return LoadCUE(path, data)
	}
	return LoadYAML(path, data)
}

// LoadYAML builds a Catalog from YAML or JSON bytes.
func LoadYAML(path string, data []byte) (*Catalog, error) {
	var dto dataFile
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	return dto.build(path)
}

// LoadCUE builds a Catalog from CUE source. The CUE value must be concrete.
func LoadCUE(path string, data []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(path, err)
	}
	var dto dataFile
	if err := v.Decode(&dto); err != nil {
		return nil, cueLoadError(path, err)
	}
	return dto.build(path)
}

// cueLoadError keeps the first CUE error and its position.
func cueLoadError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: path, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Path: path, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

func (d *dataFile) build(path string) (*Catalog, error) {
	fail := func(format string, args ...any) error {
		return &LoadError{Path: path, Message: fmt.Sprintf(format, args...)}
	}

	items := make([]Item, 0, len(d.Items))
	itemTypes := make(map[string]*Item, len(d.Items))
	for _, dto := range d.Items {
		it := Item{Name: dto.Name, Type: ItemType(dto.Type)}
		switch it.Type {
		case "":
			it.Type = ItemTypeItem
		case ItemTypeItem, ItemTypeFluid:
		default:
			return nil, fail("item %q: unknown type %q", dto.Name, dto.Type)
		}
		if dto.DefaultTemperature != nil {
			t, err := rational.FromDecimal(*dto.DefaultTemperature)
			if err != nil {
				return nil, fail("item %q: %v", dto.Name, err)
			}
			it.DefaultTemperature = t
		}
		items = append(items, it)
		itemTypes[normalize(it.Name)] = &items[len(items)-1]
	}

	lookup := func(recipe, name string) (*Item, error) {
		it, ok := itemTypes[normalize(name)]
		if !ok {
			return nil, fail("recipe %q: %v", recipe, &NotFoundError{Kind: "item", Name: name})
		}
		return it, nil
	}

	recipes := make([]Recipe, 0, len(d.Recipes))
	for _, dto := range d.Recipes {
		r := Recipe{Name: dto.Name, Category: dto.Category}
		var err error
		if r.CraftingTime, err = rational.FromDecimal(dto.Energy); err != nil {
			return nil, fail("recipe %q: energy: %v", dto.Name, err)
		}
		for _, in := range dto.Ingredients {
			it, err := lookup(dto.Name, in.Name)
			if err != nil {
				return nil, err
			}
			ing := Ingredient{Name: it.Name, Type: it.Type}
			if ing.Amount, err = rational.FromDecimal(in.Amount); err != nil {
				return nil, fail("recipe %q: ingredient %q: %v", dto.Name, in.Name, err)
			}
			if ing.Temperature.Min, err = optionalDecimal(in.MinTemperature); err != nil {
				return nil, fail("recipe %q: ingredient %q: %v", dto.Name, in.Name, err)
			}
			if ing.Temperature.Max, err = optionalDecimal(in.MaxTemperature); err != nil {
				return nil, fail("recipe %q: ingredient %q: %v", dto.Name, in.Name, err)
			}
			r.Ingredients = append(r.Ingredients, ing)
		}
		for _, out := range dto.Products {
			it, err := lookup(dto.Name, out.Name)
			if err != nil {
				return nil, err
			}
			p := Product{Name: it.Name, Type: it.Type, Temperature: it.DefaultTemperature}
			if p.Amount, err = rational.FromDecimal(out.Amount); err != nil {
				return nil, fail("recipe %q: product %q: %v", dto.Name, out.Name, err)
			}
			if out.Temperature != nil {
				if p.Temperature, err = rational.FromDecimal(*out.Temperature); err != nil {
					return nil, fail("recipe %q: product %q: %v", dto.Name, out.Name, err)
				}
			}
			r.Products = append(r.Products, p)
		}
		recipes = append(recipes, r)
	}

	machines := make([]Machine, 0, len(d.Machines))
	for _, dto := range d.Machines {
		speed, err := rational.FromDecimal(dto.CraftingSpeed)
		if err != nil {
			return nil, fail("machine %q: %v", dto.Name, err)
		}
		machines = append(machines, Machine{
			Name:          dto.Name,
			Categories:    dto.Categories,
			CraftingSpeed: speed,
			ModuleSlots:   dto.ModuleSlots,
		})
	}

	modules := make([]Module, 0, len(d.Modules))
	for _, dto := range d.Modules {
		m := Module{Name: dto.Name}
		for key, v := range dto.Effects {
			bonus, err := rational.FromDecimal(v)
			if err != nil {
				return nil, fail("module %q: %s: %v", dto.Name, key, err)
			}
			switch key {
			case "speed":
				m.Effects.Speed = bonus
			case "productivity":
				m.Effects.Productivity = bonus
			case "consumption":
				m.Effects.Consumption = bonus
			case "pollution":
				m.Effects.Pollution = bonus
			default:
				return nil, fail("module %q: unknown effect %q", dto.Name, key)
			}
		}
		modules = append(modules, m)
	}

	c, err := NewCatalog(items, recipes, machines, modules)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	return c, nil
}

func optionalDecimal(v *float64) (*rational.Rational, error) {
	if v == nil {
		return nil, nil
	}
	r, err := rational.FromDecimal(*v)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
