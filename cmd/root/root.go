package root

import (
	"github.com/spf13/cobra"

	"github.com/operator-framework/bnb/cmd/machineshop"
	"github.com/operator-framework/bnb/cmd/solve"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bnb",
		Short: "bnb is a branch and bound solver for integer programs",
		Long: `A branch and bound solver for integer linear programs written in Go.
Linear relaxations are solved with the simplex method and explored best
bound first until the best integer solution is proven optimal.`,
		SilenceUsage: true,
	}

	// add sub-commands
	rootCmd.AddCommand(solve.NewSolveCommand())
	rootCmd.AddCommand(machineshop.NewMachineShopCommand())

	return rootCmd
}
