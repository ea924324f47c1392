package solve

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/operator-framework/bnb/cmd/options"
	"github.com/operator-framework/bnb/pkg/bnb/input"
	"github.com/operator-framework/bnb/pkg/bnb/solver"
)

func NewSolveCommand() *cobra.Command {
	opts := &options.Options{}
	cmd := &cobra.Command{
		Use:   "solve <path>",
		Short: "Solves an integer program given in yaml format",
		Long: `Solves an integer program given in yaml format. Every variable is a
non-negative integer and the objective is maximized. For instance:

variables:
- name: p
  profit: 100
- name: l
  profit: 150
resources:
- name: purchase
  capacity: 40000
  coefficients: {p: 8000, l: 4000}
- name: floor_space
  operator: "<="
  capacity: 200
  coefficients: {p: 15, l: 30}
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return solve(cmd, opts, args[0])
		},
	}
	opts.AddFlags(cmd)
	return cmd
}

func solve(cmd *cobra.Command, opts *options.Options, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening problem file (%s): %w", path, err)
	}
	defer f.Close()

	return Run(cmd, opts, f)
}

// Run decodes a problem from r and reports its solution on the command's
// output.
func Run(cmd *cobra.Command, opts *options.Options, r io.Reader) error {
	source, err := input.NewYAMLProblemSource(r)
	if err != nil {
		return fmt.Errorf("error parsing problem: %w", err)
	}
	problem, err := source.GetProblem(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := opts.Context(cmd.Context())
	defer cancel()

	so := solver.NewBranchAndBoundSolver(source, nil)
	solution, err := so.Solve(ctx, opts.SolverOptions(cmd.OutOrStdout(), cmd.ErrOrStderr())...)
	if err != nil {
		return err
	}
	options.Report(cmd.OutOrStdout(), problem, solution)
	return nil
}
