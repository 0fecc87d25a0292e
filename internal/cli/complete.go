package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reqm/internal/engine"
	"github.com/roach88/reqm/internal/ir"
	"github.com/roach88/reqm/internal/rewrite"
	"github.com/roach88/reqm/internal/store"
)

// CompleteOptions holds flags for the complete command.
type CompleteOptions struct {
	*RootOptions
	Database string
	Dump     bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// CompleteResult is the JSON payload of the complete command.
type CompleteResult struct {
	RunID    string            `json:"run_id"`
	Result   string            `json:"result"`
	Steps    int               `json:"steps"`
	Rules    int               `json:"rules"`
	Snapshot ir.SystemSnapshot `json:"snapshot"`
	Dump     string            `json:"dump,omitempty"`

	// PreviousRuns are earlier recorded runs of the same input.
	PreviousRuns []string `json:"previous_runs,omitempty"`
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	return newCompleteCommand(&CompleteOptions{RootOptions: rootOpts})
}

// newCompleteCommand builds the command around opts, so callers can set
// RunIDs before the command runs.
func newCompleteCommand(opts *CompleteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <specs-dir>",
		Short: "Run completion on compiled specs",
		Long: `Build a rewrite system from the specs and run Knuth-Bendix completion.

Completion stops when every critical pair resolves, or when it has added
--max-iterations rules or a rule longer than --max-depth. Hitting a limit
exits with code 1. With --db the run is recorded for show and replay.

Examples:
  reqm complete ./specs
  reqm complete ./specs --db ./reqm.db
  reqm complete ./specs --dump --max-depth 20`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to record the run")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "print rules and homotopy generators")

	return cmd
}

func runComplete(opts *CompleteOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	slog.Debug("compiling specs", "dir", specsDir)
	rs, err := loadRequirements(specsDir)
	if err != nil {
		code, message := errorCode(err)
		return outputCommandError(formatter, code, message)
	}
	slog.Debug("specs compiled", "protocols", len(rs.Protocols), "rules", len(rs.Rules))

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	ids := opts.RunIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	eng := engine.New(st, ids, opts.engineOptions()...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := eng.Run(ctx, *rs)
	if err != nil {
		return runError(formatter, err)
	}

	out := CompleteResult{
		RunID:    res.RunID,
		Result:   res.Outcome.String(),
		Steps:    res.Steps,
		Rules:    countLiveRules(res.System),
		Snapshot: res.Snapshot,
	}
	if st != nil {
		runs, err := st.RunsForInput(ctx, res.Snapshot.InputHash)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, r := range runs {
			if r.ID != res.RunID {
				out.PreviousRuns = append(out.PreviousRuns, r.ID)
			}
		}
	}
	if opts.Dump {
		var buf bytes.Buffer
		if err := res.System.Dump(&buf); err != nil {
			return WrapExitError(ExitCommandError, "failed to dump system", err)
		}
		out.Dump = buf.String()
	}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{Status: "ok", Data: out, RunID: res.RunID}); err != nil {
			return err
		}
	} else {
		outputCompleteText(formatter, out, opts.Database != "")
	}

	if res.Err != nil {
		return WrapExitError(ExitFailure, "completion did not finish", res.Err)
	}
	return nil
}

func outputCompleteText(formatter *OutputFormatter, out CompleteResult, stored bool) {
	w := formatter.Writer
	mark := "✓"
	if out.Result != rewrite.Success.String() {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s Completion: %s after %d step(s)\n", mark, out.Result, out.Steps)
	fmt.Fprintf(w, "  %d live rule(s), %d homotopy generator(s)\n", out.Rules, len(out.Snapshot.Generators))
	if stored {
		fmt.Fprintf(w, "  Recorded run %s\n", out.RunID)
		if len(out.PreviousRuns) > 0 {
			fmt.Fprintf(w, "  Same input as %s\n", strings.Join(out.PreviousRuns, ", "))
		}
	}
	if out.Dump != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, out.Dump)
	}
}

// runError reports an engine error. Invalid input is a command error;
// anything else means the engine itself failed.
func runError(formatter *OutputFormatter, err error) error {
	if engine.IsInvalidInput(err) {
		code, message := errorCode(err)
		if code == ErrCodeGeneric {
			code = ErrCodeRunFailed
		}
		_ = formatter.Error(code, message, nil)
		return WrapExitError(ExitCommandError, "invalid requirements", err)
	}
	_ = formatter.Error(ErrCodeRunFailed, err.Error(), nil)
	return WrapExitError(ExitFailure, "completion failed", err)
}

func countLiveRules(sys *rewrite.System) int {
	n := 0
	for range sys.Rules() {
		n++
	}
	return n
}
