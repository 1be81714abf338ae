package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ratio/internal/state"
	"github.com/roach88/ratio/internal/store"
)

// SnapshotLine describes one saved version of the plan.
type SnapshotLine struct {
	ID    string `json:"id"`
	Seq   int64  `json:"seq"`
	Bytes int    `json:"bytes"`
}

func snapshotLine(s store.Snapshot) SnapshotLine {
	return SnapshotLine{ID: s.ID, Seq: s.Seq, Bytes: len(s.Value)}
}

// HistoryResult lists saved versions oldest first.
type HistoryResult struct {
	Key       string         `json:"key"`
	Snapshots []SnapshotLine `json:"snapshots"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <fragment>",
		Short: "Save a plan to the database",
		Long: `Decode a fragment and save the plan as the current saved plan.
Every save is kept as a snapshot; see "ratio history".

Examples:
  ratio save 5-q1YqS0ks...
  ratio save 5-q1YqS0ks... --db plans.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			plan, err := sess.decodeFragment(args[0])
			if err != nil {
				return err
			}
			st, err := sess.openStore()
			if err != nil {
				return err
			}
			if err := sess.codec.SaveLocal(st.Backend(cmd.Context()), plan); err != nil {
				return sess.formatter.Fail(ErrCodeStore, "failed to save plan", err)
			}

			history, err := st.History(cmd.Context(), state.StorageKey)
			if err != nil {
				return sess.formatter.Fail(ErrCodeStore, "failed to read saved snapshot", err)
			}
			latest := snapshotLine(history[len(history)-1])
			rootOpts.Logger.Debug("plan saved", "id", latest.ID, "seq", latest.Seq)

			if rootOpts.Format == "json" {
				return sess.formatter.Success(latest)
			}
			return sess.formatter.Success(fmt.Sprintf("✓ Saved snapshot %s (seq %d)", latest.ID, latest.Seq))
		},
	}
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Print the saved plan as a share fragment",
		Long: `Read the saved plan from the database and print it as a
current-version fragment. An empty database yields an empty plan.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			plan, err := sess.loadSaved(cmd.Context())
			if err != nil {
				return err
			}
			fragment, err := sess.codec.EncodeFragment(plan)
			if err != nil {
				return sess.formatter.Fail(ErrCodeGeneric, "failed to encode fragment", err)
			}

			if rootOpts.Format == "json" {
				return sess.formatter.Success(FragmentResult{Fragment: fragment})
			}
			return sess.formatter.Success(fragment)
		},
	}
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Restore string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved snapshots of the plan",
		Long: `List every saved version of the plan, oldest first.
With --restore, save the given snapshot again as the current plan.

Examples:
  ratio history
  ratio history --restore 01927c3e-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Restore, "restore", "", "snapshot id to restore")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.Settings.Database)
	if err != nil {
		return formatter.Fail(ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.Restore != "" {
		snap, err := st.Restore(ctx, opts.Restore)
		if err != nil {
			return formatter.Fail(ErrCodeStore, "failed to restore snapshot", err)
		}
		opts.Logger.Debug("snapshot restored", "from", opts.Restore, "id", snap.ID, "seq", snap.Seq)
		if opts.Format == "json" {
			return formatter.Success(snapshotLine(snap))
		}
		return formatter.Success(fmt.Sprintf("✓ Restored %s as snapshot %s (seq %d)", opts.Restore, snap.ID, snap.Seq))
	}

	snaps, err := st.History(ctx, state.StorageKey)
	if err != nil {
		return formatter.Fail(ErrCodeStore, "failed to read history", err)
	}
	result := HistoryResult{Key: state.StorageKey, Snapshots: make([]SnapshotLine, 0, len(snaps))}
	for _, s := range snaps {
		result.Snapshots = append(result.Snapshots, snapshotLine(s))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	w := cmd.OutOrStdout()
	if len(result.Snapshots) == 0 {
		fmt.Fprintln(w, "No saved snapshots.")
		return nil
	}
	for _, s := range result.Snapshots {
		fmt.Fprintf(w, "%4d  %s  %d bytes\n", s.Seq, s.ID, s.Bytes)
	}
	return nil
}
