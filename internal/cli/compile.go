package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reqm/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled requirement set and its hash.
type CompilationResult struct {
	Requirements *ir.RequirementSet `json:"requirements"`
	InputHash    string             `json:"input_hash"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE specs to a canonical requirement set",
		Long: `Compile CUE protocol declarations and rules to a requirement set.

The output is canonical JSON, the same encoding that is hashed to identify
runs of this input.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := errorCode(loadErrors[0])
		return outputCommandError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	if len(loadErrors) > 0 {
		return outputLoadErrors(formatter, "Compilation failed", loadErrors)
	}

	rs := loadResult.Requirements
	hash, err := ir.RequirementSetHash(*rs)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing requirements: %v", err))
	}

	if opts.Output != "" {
		if err := writeRequirements(rs, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(CompilationResult{Requirements: rs, InputHash: hash})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d protocol(s), %d rule(s)\n\n", len(rs.Protocols), len(rs.Rules))
	if len(rs.Protocols) > 0 {
		fmt.Fprintln(w, "Protocols:")
		for _, p := range rs.Protocols {
			fmt.Fprintf(w, "  %s", p.Name)
			if len(p.Inherits) > 0 {
				fmt.Fprintf(w, " : %v", p.Inherits)
			}
			if len(p.AssociatedTypes) > 0 {
				fmt.Fprintf(w, " associated %v", p.AssociatedTypes)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
	if len(rs.Rules) > 0 {
		fmt.Fprintln(w, "Rules:")
		for i, r := range rs.Rules {
			fmt.Fprintf(w, "  %s: %s == %s\n", ruleName(i, r), r.LHS, r.RHS)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Input hash: %s\n", hash)
	if opts.Output != "" {
		fmt.Fprintf(w, "Wrote canonical requirements to %s\n", opts.Output)
	}
	return nil
}

// ruleName labels an input rule by its ID or position.
func ruleName(i int, r ir.RuleSpec) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("rules[%d]", i)
}

// outputCommandError outputs a single error as a command-level failure.
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputLoadErrors outputs compile errors collected from the specs.
func outputLoadErrors(formatter *OutputFormatter, title string, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := errorCode(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("%s with %d error(s)", title, len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n\n", title)
	for _, err := range errs {
		code, message := errorCode(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("%s with %d error(s)", title, len(errs)))
}

// writeRequirements writes the requirement set as canonical JSON.
func writeRequirements(rs *ir.RequirementSet, filename string) error {
	data, err := ir.MarshalCanonical(rs.CanonicalObject())
	if err != nil {
		return fmt.Errorf("marshaling requirements: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
