package machineshop

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/operator-framework/bnb/cmd/options"
	"github.com/operator-framework/bnb/pkg/bnb"
	"github.com/operator-framework/bnb/pkg/bnb/input"
	"github.com/operator-framework/bnb/pkg/bnb/solver"
)

func NewMachineShopCommand() *cobra.Command {
	opts := &options.Options{}
	cmd := &cobra.Command{
		Use:   "machineshop",
		Short: "Solves the machine shop purchasing problem",
		Long: `Solves the machine shop purchasing problem: a shop buys presses that cost
$8000, take 15 sq. ft. and earn $100 a day, and lathes that cost $4000,
take 30 sq. ft. and earn $150 a day. With a budget of $40000 and 200
sq. ft. of floor space, find the purchase that maximizes daily profit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solve(cmd, opts)
		},
	}
	opts.AddFlags(cmd)
	return cmd
}

const (
	Presses bnb.Identifier = "p"
	Lathes  bnb.Identifier = "l"
)

// Problem returns the machine shop problem.
func Problem() *bnb.Problem {
	return &bnb.Problem{
		Variables: []bnb.Identifier{Presses, Lathes},
		Profit:    map[bnb.Identifier]float64{Presses: 100, Lathes: 150},
		Resources: []bnb.Resource{
			{Name: "purchase", Coefficients: map[bnb.Identifier]float64{Presses: 8000, Lathes: 4000}, Capacity: 40000},
			{Name: "floor_space", Coefficients: map[bnb.Identifier]float64{Presses: 15, Lathes: 30}, Capacity: 200},
		},
	}
}

func solve(cmd *cobra.Command, opts *options.Options) error {
	ctx, cancel := opts.Context(cmd.Context())
	defer cancel()

	problem := Problem()
	so := solver.NewBranchAndBoundSolver(input.NewStaticProblemSource(problem), nil)
	solution, err := so.Solve(ctx, opts.SolverOptions(cmd.OutOrStdout(), cmd.ErrOrStderr())...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if solution.Error() != nil {
		fmt.Fprintln(out, "no purchase fits the budget and floor space")
		return nil
	}
	interpret(out, solution)
	fmt.Fprintf(out, "nodes evaluated: %d, branched: %d\n", solution.NodesEvaluated(), solution.NodesBranched())
	return nil
}

func interpret(w io.Writer, solution *solver.Solution) {
	p, l := solution.Value(Presses), solution.Value(Lathes)
	fmt.Fprintf(w, "buy %d press(es) and %d lathe(s)\n", p, l)
	fmt.Fprintf(w, "daily profit: $%.0f\n", solution.Objective())
	fmt.Fprintf(w, "purchase cost: $%d of $40000\n", 8000*p+4000*l)
	fmt.Fprintf(w, "floor space: %d of 200 sq. ft.\n", 15*p+30*l)
	if !solution.Optimal() {
		fmt.Fprintf(w, "search stopped early, profit could reach $%.2f\n", solution.Bound())
	}
}
