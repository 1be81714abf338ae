package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ratio/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Data       string
	Database   string

	// Settings is the config file merged with explicitly set flags.
	// Populated before any subcommand runs.
	Settings config.Config
	Logger   *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// Execute runs the CLI and returns the process exit code. Errors that the
// commands have not already reported are printed to stderr.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return GetExitCode(err)
}

// NewRootCommand creates the root command for the ratio CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ratio",
		Short: "ratio - exact production chain rates",
		Long:  "Compute the net item and fluid flow of a factory plan with exact fractions, and save, share and migrate plans.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultFile, "config file")
	cmd.PersistentFlags().StringVar(&opts.Data, "data", "", "game data file (.yaml or .cue)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database holding saved plans")

	// Add subcommands
	cmd.AddCommand(NewRateCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// prepare loads the config file, applies flag overrides and installs the
// logger. Flags win over the file only when set on the command line.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if cmd.Flags().Changed("format") && !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = o.Format
	} else {
		o.Format = cfg.Format
	}
	if o.Data != "" {
		cfg.Data = o.Data
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	o.Settings = cfg

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	o.Logger.Debug("settings loaded", "config", o.ConfigPath, "data", cfg.Data, "database", cfg.Database)
	return nil
}

// formatter builds the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
