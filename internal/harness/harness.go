package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/ratio/internal/compress"
	"github.com/roach88/ratio/internal/flow"
	"github.com/roach88/ratio/internal/gamedata"
	"github.com/roach88/ratio/internal/rational"
	"github.com/roach88/ratio/internal/state"
	"github.com/roach88/ratio/internal/store"
)

// Harness is the scenario execution engine.
type Harness struct {
	repo   *gamedata.Catalog
	codec  *state.Codec
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database.
//
// Execution flow:
// 1. Load game data
// 2. Build the state from groups or decode it from the fragment
// 3. Reduce all groups to the net flow and evaluate assertions
// 4. Save and reload through SQLite and a fragment; both must give the same net flow
func Run(scenario *Scenario) (*Result, error) {
	repo, err := gamedata.LoadFile(scenario.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to load game data: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		repo:   repo,
		codec:  state.NewCodec(repo, compress.NewFlate(), state.WithLogger(logger)),
		store:  st,
		logger: logger,
	}

	result := NewResult()

	s, err := h.buildState(scenario)
	if scenario.ExpectError != "" {
		h.checkExpectedError(scenario.ExpectError, err, result)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build state: %w", err)
	}

	net, err := s.AggregateAll()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate: %w", err)
	}
	result.Ingredients = entryStrings(net.Ingredients)
	result.Products = entryStrings(net.Products)
	h.logger.Debug("net flow", "scenario", scenario.Name,
		"ingredients", len(result.Ingredients), "products", len(result.Products))

	if result.Payload, err = h.codec.Marshal(s); err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	for _, msg := range EvaluateAssertions(net, scenario.Assertions) {
		result.AddError(msg)
	}

	if err := h.checkRoundTrips(context.Background(), s, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (h *Harness) buildState(scenario *Scenario) (*state.State, error) {
	if scenario.Fragment != "" {
		return h.codec.DecodeFragment(scenario.Fragment)
	}

	s := state.NewState()
	for category, machine := range scenario.Overrides {
		s.SetOverride(category, machine)
	}

	for i, gs := range scenario.Groups {
		var gid state.Handle
		if i == 0 {
			gid = s.Groups[0].ID
			if err := s.RenameGroup(gid, gs.Name); err != nil {
				return nil, err
			}
		} else {
			gid = s.AddGroup(gs.Name).ID
		}

		for ri, rs := range gs.Rows {
			row, err := h.resolveRow(s, rs)
			if err != nil {
				return nil, fmt.Errorf("group %q row %d: %w", gs.Name, ri, err)
			}
			if _, err := s.AddRow(gid, row); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (h *Harness) resolveRow(s *state.State, rs RowDef) (flow.Row, error) {
	recipe, err := h.repo.Recipe(rs.Recipe)
	if err != nil {
		return flow.Row{}, err
	}

	var machine *gamedata.Machine
	if rs.Machine == "" {
		machine, err = s.DefaultMachine(h.repo, recipe.Category)
	} else {
		machine, err = h.repo.Machine(rs.Machine)
	}
	if err != nil {
		return flow.Row{}, err
	}

	count, err := rational.Parse(rs.Count)
	if err != nil {
		return flow.Row{}, err
	}

	row := flow.Row{Recipe: recipe, Machine: machine, Count: count, BeaconCount: rs.BeaconCount}
	for _, name := range rs.Modules {
		var m *gamedata.Module
		if name != nil {
			if m, err = h.repo.Module(*name); err != nil {
				return flow.Row{}, err
			}
		}
		row.Modules = append(row.Modules, m)
	}
	if rs.Beacon != "" {
		if row.Beacon, err = h.repo.Module(rs.Beacon); err != nil {
			return flow.Row{}, err
		}
	}
	return row, nil
}

func (h *Harness) checkExpectedError(code string, err error, result *Result) {
	if err == nil {
		result.AddError(fmt.Sprintf("expected %s error, fragment decoded", code))
		return
	}
	var ce *state.CodecError
	if !errors.As(err, &ce) {
		result.AddError(fmt.Sprintf("expected %s error, got %v", code, err))
		return
	}
	if string(ce.Code) != code {
		result.AddError(fmt.Sprintf("expected %s error, got %s", code, ce.Code))
	}
}

// checkRoundTrips reloads s through the SQLite backend and a fragment and
// compares the net flows.
func (h *Harness) checkRoundTrips(ctx context.Context, s *state.State, result *Result) error {
	backend := h.store.Backend(ctx)
	if err := h.codec.SaveLocal(backend, s); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	local, err := h.codec.LoadLocal(backend)
	if err != nil {
		result.AddError(fmt.Sprintf("local storage round trip: %v", err))
	} else {
		h.compareNet("local storage", local, result)
	}

	fragment := &state.MemoryFragment{}
	if err := h.codec.WriteFragment(fragment, s); err != nil {
		return fmt.Errorf("failed to write fragment: %w", err)
	}
	decoded, err := h.codec.ReadFragment(fragment)
	if err != nil {
		result.AddError(fmt.Sprintf("fragment round trip: %v", err))
	} else {
		h.compareNet("fragment", decoded, result)
	}
	return nil
}

func (h *Harness) compareNet(via string, s *state.State, result *Result) {
	net, err := s.AggregateAll()
	if err != nil {
		result.AddError(fmt.Sprintf("%s round trip: %v", via, err))
		return
	}
	if !slices.Equal(entryStrings(net.Ingredients), result.Ingredients) ||
		!slices.Equal(entryStrings(net.Products), result.Products) {
		result.AddError(fmt.Sprintf("%s round trip changed net flow: ingredients %v products %v",
			via, entryStrings(net.Ingredients), entryStrings(net.Products)))
	}
}

func entryStrings(entries []flow.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
