package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqm/internal/engine"
	"github.com/roach88/reqm/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplaySummary holds the overall replay result.
type ReplaySummary struct {
	Runs             []*engine.ReplayResult `json:"runs"`
	TotalRuns        int                    `json:"total_runs"`
	AllDeterministic bool                   `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Replay recorded runs and verify determinism",
		Long: `Re-run the input of recorded runs with their recorded limits and check
that completion reproduces the stored system exactly.

Without a run ID every run in the database is replayed.

Exit codes:
  0 - All runs reproduce their snapshot
  1 - A replay differs from the stored run
  2 - Command error (database not found, etc.)

Examples:
  reqm replay --db ./reqm.db
  reqm replay --db ./reqm.db 0192f3c4-...
  reqm replay --db ./reqm.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, args []string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	// Get run IDs to process
	var runIDs []string
	if len(args) == 1 {
		runIDs = args
	} else {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, r := range runs {
			runIDs = append(runIDs, r.ID)
		}
	}

	summary := ReplaySummary{
		Runs:             make([]*engine.ReplayResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	eng := engine.New(st, engine.UUIDv7Generator{}, opts.engineOptions()...)
	for _, id := range runIDs {
		res, err := eng.Replay(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}
		summary.Runs = append(summary.Runs, res)
		if !res.Match {
			summary.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		formatter := jsonFormatter(cmd.OutOrStdout())
		if err := formatter.Success(summary); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, summary, opts.Verbose)
	}

	if !summary.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, summary ReplaySummary, verbose bool) {
	w := cmd.OutOrStdout()

	if summary.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return
	}

	for _, res := range summary.Runs {
		if res.Match {
			fmt.Fprintf(w, "✓ %s\n", res.RunID)
			if verbose {
				fmt.Fprintf(w, "  snapshot %s\n", res.StoredHash)
			}
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", res.RunID)
		fmt.Fprintf(w, "  stored   %s\n", res.StoredHash)
		fmt.Fprintf(w, "  rows     %s\n", res.ReadHash)
		fmt.Fprintf(w, "  replayed %s\n", res.ReplayedHash)
		if res.Diff != "" {
			fmt.Fprintf(w, "  diff (-stored +replayed):\n%s\n", res.Diff)
		}
	}

	fmt.Fprintln(w)
	if summary.AllDeterministic {
		fmt.Fprintf(w, "✓ All %d run(s) replay deterministically\n", summary.TotalRuns)
	} else {
		fmt.Fprintln(w, "✗ Determinism verification failed")
	}
}
