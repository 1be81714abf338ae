package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ratio/internal/payload"
	"github.com/roach88/ratio/internal/state"
)

// FragmentResult is the output of encode and save.
type FragmentResult struct {
	Fragment string `json:"fragment"`
}

// PayloadResult is the output of decode and migrate.
type PayloadResult struct {
	Payload json.RawMessage `json:"payload"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <payload-file>",
		Short: "Encode a saved payload as a share fragment",
		Long: `Read payload text of any known version, resolve it against the game
data and print the current-version fragment. Use "-" to read standard input.

Examples:
  ratio encode plan.json
  cat plan.json | ratio encode -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(rootOpts, cmd)
			if err != nil {
				return err
			}

			text, err := readInput(cmd, args[0])
			if err != nil {
				return sess.formatter.Fail(ErrCodeInput, "failed to read payload", err)
			}
			plan, err := sess.codec.Unmarshal(text)
			if err != nil {
				return sess.formatter.Fail(ErrCodeDecode, "failed to decode payload", err)
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

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <fragment>",
		Short: "Decode a share fragment into current-version payload text",
		Long: `Decode a fragment of any known version, resolve it against the game
data and print the canonical current-version payload.

Examples:
  ratio decode 5-q1YqS0ks...
  ratio decode '[["copper-cable",null,2]]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(rootOpts, cmd)
			if err != nil {
				return err
			}

			plan, err := sess.decodeFragment(args[0])
			if err != nil {
				return err
			}
			text, err := sess.codec.Marshal(plan)
			if err != nil {
				return sess.formatter.Fail(ErrCodeGeneric, "failed to marshal plan", err)
			}

			if rootOpts.Format == "json" {
				return sess.formatter.Success(PayloadResult{Payload: json.RawMessage(text)})
			}
			return sess.formatter.Success(text)
		},
	}
}

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Output string
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate <payload-file>",
		Short: "Upgrade payload text to the current version",
		Long: `Apply every migration step from the payload's version to the current
one. Names are not checked against game data.

Examples:
  ratio migrate old.json
  ratio migrate old.json -o new.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the payload to a file instead of stdout")

	return cmd
}

func runMigrate(cmd *cobra.Command, opts *MigrateOptions, path string) error {
	formatter := opts.formatter(cmd)

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ErrCodeInput, "failed to read payload", err)
	}
	envelope, err := state.MigrateEnvelope(text)
	if err != nil {
		return formatter.Fail(ErrCodeDecode, "failed to migrate payload", err)
	}
	formatter.VerboseLog("Migrated %s to version %d", path, state.CurrentVersion)
	out, err := payload.Marshal(envelope)
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, "failed to marshal payload", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out, 0644); err != nil {
			return formatter.Fail(ErrCodeWriteFailed, "failed to write payload", err)
		}
		opts.Logger.Debug("payload written", "path", opts.Output)
		if opts.Format == "json" {
			return formatter.Success(map[string]string{"output": opts.Output})
		}
		return formatter.Success(fmt.Sprintf("✓ Migrated to version %d: %s", state.CurrentVersion, opts.Output))
	}

	if opts.Format == "json" {
		return formatter.Success(PayloadResult{Payload: json.RawMessage(out)})
	}
	return formatter.Success(string(out))
}
