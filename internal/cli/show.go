package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/reqm/internal/ir"
	"github.com/roach88/reqm/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// ShowRun is the JSON payload of show for a single run.
type ShowRun struct {
	Seq          int64             `json:"seq"`
	SnapshotHash string            `json:"snapshot_hash"`
	Input        ir.RequirementSet `json:"input"`
	Snapshot     ir.SystemSnapshot `json:"snapshot"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show recorded completion runs",
		Long: `List the runs recorded in a database, or show one run in detail.

The detail view lists every rule slot, deleted ones included, and each
homotopy generator with its rewrite loop.

Examples:
  reqm show --db ./reqm.db
  reqm show --db ./reqm.db 0192f3c4-...
  reqm show --db ./reqm.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runShowRun(opts, args[0], cmd)
			}
			return runShowList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShowList(opts *ShowOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		if runs == nil {
			runs = []store.RunSummary{}
		}
		formatter := jsonFormatter(w)
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tRESULT\tSTEPS\tRULES\tGENERATORS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n", r.Seq, r.ID, r.Result, r.Steps, r.Rules, r.Generators)
	}
	return tw.Flush()
}

func runShowRun(opts *ShowOptions, runID string, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(context.Background(), runID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		formatter := jsonFormatter(w)
		return formatter.Success(ShowRun{
			Seq:          run.Seq,
			SnapshotHash: run.SnapshotHash,
			Input:        run.Input,
			Snapshot:     run.Snapshot,
		})
	}

	snap := run.Snapshot
	fmt.Fprintf(w, "Run: %s (seq %d)\n", snap.RunID, run.Seq)
	fmt.Fprintf(w, "Result: %s after %d step(s)\n", snap.Result, snap.Steps)
	fmt.Fprintf(w, "Limits: max-iterations %d, max-depth %d\n", snap.MaxIterations, snap.MaxDepth)
	fmt.Fprintf(w, "Engine: %s\n", snap.EngineVersion)
	if opts.Verbose {
		fmt.Fprintf(w, "Input hash: %s\n", snap.InputHash)
		fmt.Fprintf(w, "Snapshot hash: %s\n", run.SnapshotHash)
	}

	if len(snap.Protocols) > 0 {
		fmt.Fprintln(w, "\nProtocols:")
		for _, p := range snap.Protocols {
			fmt.Fprintf(w, "  %s", p.Name)
			if len(p.Inherits) > 0 {
				fmt.Fprintf(w, " : %s", strings.Join(p.Inherits, ", "))
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w, "\nRules:")
	for _, r := range snap.Rules {
		if r.Deleted && !opts.Verbose {
			continue
		}
		suffix := ""
		if r.Deleted {
			suffix = " [deleted]"
		}
		fmt.Fprintf(w, "  %d: %s ⇒ %s%s\n", r.ID, r.LHS, r.RHS, suffix)
	}

	if len(snap.Generators) > 0 {
		fmt.Fprintln(w, "\nHomotopy generators:")
		for _, g := range snap.Generators {
			fmt.Fprintf(w, "  %s: %s\n", g.Term, formatStepRecords(g.Path))
		}
	}
	return nil
}

// formatStepRecords prints a stored path as rule applications joined with
// " ⊗ ". Each step is its rule ID, "⁻¹" when inverted, and "@" offset.
func formatStepRecords(path []ir.StepRecord) string {
	parts := make([]string, len(path))
	for i, st := range path {
		inv := ""
		if st.Inverse {
			inv = "⁻¹"
		}
		if st.Kind == "adjust" {
			parts[i] = fmt.Sprintf("σ%s@%d", inv, st.Offset)
			continue
		}
		parts[i] = fmt.Sprintf("(%d)%s@%d", st.RuleID, inv, st.Offset)
	}
	return strings.Join(parts, " ⊗ ")
}
