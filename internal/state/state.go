package state

import (
	"fmt"
	"slices"

	"github.com/roach88/ratio/internal/flow"
	"github.com/roach88/ratio/internal/gamedata"
)

// DefaultGroupName names the group synthesized for empty states and for
// payloads that predate groups.
const DefaultGroupName = "Factory"

// Handle identifies a group or row within one State.
type Handle int64

// Row is a production row with a stable handle.
type Row struct {
	ID Handle
	flow.Row
}

// Group is a named, ordered list of rows.
type Group struct {
	ID   Handle
	Name string
	Rows []*Row
}

// Settings are user preferences persisted with the rows.
type Settings struct {
	// AssemblerOverrides maps a recipe category to the machine used for new
	// and machine-less rows of that category.
	AssemblerOverrides map[string]string
}

// State is the persisted production plan. Handles come from a counter
// owned by the State, so two States built the same way get the same ids.
type State struct {
	Groups   []*Group
	Settings Settings

	lastID Handle
}

// NewState returns a State holding one empty default group.
func NewState() *State {
	s := &State{Settings: Settings{AssemblerOverrides: map[string]string{}}}
	s.AddGroup(DefaultGroupName)
	return s
}

func (s *State) nextID() Handle {
	s.lastID++
	return s.lastID
}

// AddGroup appends an empty group.
func (s *State) AddGroup(name string) *Group {
	g := &Group{ID: s.nextID(), Name: name}
	s.Groups = append(s.Groups, g)
	return g
}

// Group looks up a group by handle.
func (s *State) Group(id Handle) (*Group, error) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("group %d: %w", id, ErrUnknownHandle)
}

// RemoveGroup deletes a group. Removing the last group leaves a fresh
// empty default group in its place.
func (s *State) RemoveGroup(id Handle) error {
	i := slices.IndexFunc(s.Groups, func(g *Group) bool { return g.ID == id })
	if i < 0 {
		return fmt.Errorf("group %d: %w", id, ErrUnknownHandle)
	}
	s.Groups = slices.Delete(s.Groups, i, i+1)
	s.ensureGroup()
	return nil
}

func (s *State) ensureGroup() {
	if len(s.Groups) == 0 {
		s.AddGroup(DefaultGroupName)
	}
}

// RenameGroup changes a group's name.
func (s *State) RenameGroup(id Handle, name string) error {
	g, err := s.Group(id)
	if err != nil {
		return err
	}
	g.Name = name
	return nil
}

// AddRow appends a row to a group.
func (s *State) AddRow(groupID Handle, row flow.Row) (*Row, error) {
	g, err := s.Group(groupID)
	if err != nil {
		return nil, err
	}
	r := &Row{ID: s.nextID(), Row: row}
	g.Rows = append(g.Rows, r)
	return r, nil
}

// RemoveRow deletes a row from whichever group holds it.
func (s *State) RemoveRow(id Handle) error {
	for _, g := range s.Groups {
		if i := slices.IndexFunc(g.Rows, func(r *Row) bool { return r.ID == id }); i >= 0 {
			g.Rows = slices.Delete(g.Rows, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("row %d: %w", id, ErrUnknownHandle)
}

// SetOverride makes machine the default for category.
func (s *State) SetOverride(category, machine string) {
	if s.Settings.AssemblerOverrides == nil {
		s.Settings.AssemblerOverrides = map[string]string{}
	}
	s.Settings.AssemblerOverrides[category] = machine
}

// ClearOverride restores the game-data default for category.
func (s *State) ClearOverride(category string) {
	delete(s.Settings.AssemblerOverrides, category)
}

// DefaultMachine resolves the machine used for category: the settings
// override when present, otherwise the category's first machine.
func (s *State) DefaultMachine(repo gamedata.Repository, category string) (*gamedata.Machine, error) {
	if name, ok := s.Settings.AssemblerOverrides[category]; ok {
		m, err := repo.Machine(name)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", category, err)
		}
		return m, nil
	}
	return repo.DefaultMachineFor(category)
}

// Aggregate reduces the rows of one group to their net flow.
func (s *State) Aggregate(groupID Handle) (flow.Result, error) {
	g, err := s.Group(groupID)
	if err != nil {
		return flow.Result{}, err
	}
	return aggregate([]*Group{g})
}

// AggregateAll reduces every row of every group to one net flow.
func (s *State) AggregateAll() (flow.Result, error) {
	return aggregate(s.Groups)
}

func aggregate(groups []*Group) (flow.Result, error) {
	agg := flow.NewAggregator()
	for _, g := range groups {
		for _, r := range g.Rows {
			if err := agg.AddRow(r.Row); err != nil {
				return flow.Result{}, fmt.Errorf("group %q row %d: %w", g.Name, r.ID, err)
			}
		}
	}
	return agg.Reduce(), nil
}
