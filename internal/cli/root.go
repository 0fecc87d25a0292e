package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/reqm/internal/engine"
	"github.com/roach88/reqm/internal/rewrite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose       bool
	Format        string // "json" | "text"
	Debug         string // comma-separated debug categories
	MaxIterations int
	MaxDepth      int

	debugFlags rewrite.DebugFlags
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the reqm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reqm",
		Short: "reqm - requirement machine",
		Long: `Complete generic requirement rewrite systems.

Protocols and same-type requirements are written in CUE, completed with
Knuth-Bendix completion and answered by reducing terms to normal forms.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Debug, "debug", "", "debug categories (simplify,add,merge,completion,all)")
	cmd.PersistentFlags().IntVar(&opts.MaxIterations, "max-iterations", rewrite.DefaultMaxIterations, "maximum number of rules completion may add")
	cmd.PersistentFlags().IntVar(&opts.MaxDepth, "max-depth", rewrite.DefaultMaxDepth, "maximum length of a rule's left-hand side")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates global flags and installs the default logger.
// Logs go to stderr so they never mix with JSON output.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("invalid --max-iterations %d: must be positive", o.MaxIterations)
	}
	if o.MaxDepth <= 0 {
		return fmt.Errorf("invalid --max-depth %d: must be positive", o.MaxDepth)
	}

	flags, err := rewrite.ParseDebugFlags(o.Debug)
	if err != nil {
		return fmt.Errorf("invalid --debug: %w", err)
	}
	o.debugFlags = flags

	level := slog.LevelWarn
	if o.Verbose || flags != 0 {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}

// engineOptions maps the global flags to engine options. Unset limits keep
// the engine defaults.
func (o *RootOptions) engineOptions() []engine.EngineOption {
	opts := []engine.EngineOption{
		engine.WithDebug(o.debugFlags),
		engine.WithLogger(slog.Default()),
	}
	if o.MaxIterations > 0 {
		opts = append(opts, engine.WithMaxIterations(o.MaxIterations))
	}
	if o.MaxDepth > 0 {
		opts = append(opts, engine.WithMaxDepth(o.MaxDepth))
	}
	return opts
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
