package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/reqm/internal/engine"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Equivalent bool // also report whether all terms are equivalent
}

// NormalizeResult is the JSON payload of the normalize command.
type NormalizeResult struct {
	Result     string              `json:"result"`
	Terms      []engine.NormalForm `json:"terms"`
	Equivalent *bool               `json:"equivalent,omitempty"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <specs-dir> <term>...",
		Short: "Reduce terms to normal form",
		Long: `Complete the specs, then reduce each term to its normal form.

Two terms are equivalent under the requirements exactly when they have the
same normal form, provided completion succeeded. With --verbose the rewrite
path of each reduction is printed.

Examples:
  reqm normalize ./specs 'τ_0_0.[Collection:Element]'
  reqm normalize ./specs --equivalent A.B.C A.C`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Equivalent, "equivalent", false, "check that all terms share one normal form")

	return cmd
}

func runNormalize(opts *NormalizeOptions, specsDir string, terms []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	rs, err := loadRequirements(specsDir)
	if err != nil {
		code, message := errorCode(err)
		return outputCommandError(formatter, code, message)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	eng := engine.New(nil, engine.UUIDv7Generator{}, opts.engineOptions()...)
	res, err := eng.Run(ctx, *rs)
	if err != nil {
		return runError(formatter, err)
	}
	if res.Err != nil {
		slog.Warn("completion did not finish, normal forms may not be unique", "result", res.Outcome.String())
	}

	out := NormalizeResult{Result: res.Outcome.String()}
	for _, text := range terms {
		nf, err := engine.Normalize(res.System, text)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, err.Error())
		}
		out.Terms = append(out.Terms, nf)
	}

	var equivalent bool
	if opts.Equivalent {
		equivalent = true
		for _, nf := range out.Terms[1:] {
			if nf.Output != out.Terms[0].Output {
				equivalent = false
				break
			}
		}
		out.Equivalent = &equivalent
	}

	if formatter.Format == "json" {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, nf := range out.Terms {
			fmt.Fprintf(w, "%s → %s\n", nf.Input, nf.Output)
			if opts.Verbose && nf.Proof != "" {
				fmt.Fprintf(w, "  %s\n", nf.Proof)
			}
		}
		if opts.Equivalent {
			if equivalent {
				fmt.Fprintln(w, "✓ All terms are equivalent")
			} else {
				fmt.Fprintln(w, "✗ Terms are not equivalent")
			}
		}
	}

	if opts.Equivalent && !equivalent {
		return NewExitError(ExitFailure, "terms are not equivalent")
	}
	return nil
}
