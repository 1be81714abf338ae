package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ratio/internal/compress"
	"github.com/roach88/ratio/internal/gamedata"
	"github.com/roach88/ratio/internal/state"
	"github.com/roach88/ratio/internal/store"
)

// session bundles what most commands need: game data, a codec bound to it,
// and lazily the database.
type session struct {
	opts      *RootOptions
	formatter *OutputFormatter
	repo      *gamedata.Catalog
	codec     *state.Codec
	store     *store.Store
}

// newSession loads the configured game data. Errors are already reported
// through the formatter.
func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := opts.formatter(cmd)

	repo, err := gamedata.LoadFile(opts.Settings.Data)
	if err != nil {
		return nil, formatter.Fail(ErrCodeGameData, "failed to load game data", err)
	}
	opts.Logger.Debug("game data loaded", "path", opts.Settings.Data)

	return &session{
		opts:      opts,
		formatter: formatter,
		repo:      repo,
		codec:     state.NewCodec(repo, compress.NewFlate(), state.WithLogger(opts.Logger)),
	}, nil
}

// openStore opens the configured database once.
func (s *session) openStore() (*store.Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	st, err := store.Open(s.opts.Settings.Database)
	if err != nil {
		return nil, s.formatter.Fail(ErrCodeStore, "failed to open database", err)
	}
	s.store = st
	return st, nil
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// loadSaved reads the plan saved in the database.
func (s *session) loadSaved(ctx context.Context) (*state.State, error) {
	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	plan, err := s.codec.LoadLocal(st.Backend(ctx))
	if err != nil {
		return nil, s.formatter.Fail(ErrCodeDecode, "failed to load saved plan", err)
	}
	return plan, nil
}

// decodeFragment decodes fragment text given on the command line.
func (s *session) decodeFragment(fragment string) (*state.State, error) {
	plan, err := s.codec.DecodeFragment(strings.TrimSpace(fragment))
	if err != nil {
		return nil, s.formatter.Fail(ErrCodeDecode, "failed to decode fragment", err)
	}
	return plan, nil
}

// readInput reads a file, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
