package options

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/operator-framework/bnb/internal/search"
	"github.com/operator-framework/bnb/pkg/bnb"
	"github.com/operator-framework/bnb/pkg/bnb/solver"
)

// Options holds the search settings shared by every solving command.
type Options struct {
	Tolerance   float64
	NodeLimit   int
	Parallelism int
	Timeout     time.Duration
	Verbose     int
	Trace       bool
	Rounding    bool
}

func (o *Options) AddFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&o.Tolerance, "tolerance", search.DefaultTolerance, "absolute distance to the nearest integer under which a value counts as integral")
	fs.IntVar(&o.NodeLimit, "node-limit", 0, "maximum number of relaxations to solve (0 for no limit)")
	fs.IntVar(&o.Parallelism, "parallelism", 1, "number of open nodes expanded concurrently")
	fs.DurationVar(&o.Timeout, "timeout", 0, "stop the search after this long and report the best solution found (0 for no timeout)")
	fs.CountVarP(&o.Verbose, "verbose", "v", "log search progress to stderr; repeat to log every node")
	fs.BoolVar(&o.Trace, "trace", false, "print every classified node of the search tree")
	fs.BoolVar(&o.Rounding, "rounding-heuristic", false, "start from the root relaxation rounded down when it is feasible")
}

// Context returns a Context honoring the configured timeout.
func (o *Options) Context(parent context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(parent, o.Timeout)
	}
	return context.WithCancel(parent)
}

// Logger returns a logger writing to w, or a discarding one when
// verbose output was not requested.
func (o *Options) Logger(w io.Writer) logr.Logger {
	if o.Verbose == 0 {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: o.Verbose - 1}).WithName("bnb")
}

// SolverOptions translates the flags into solver options. Traces go to
// out, logs to errOut.
func (o *Options) SolverOptions(out, errOut io.Writer) []solver.Option {
	logger := o.Logger(errOut)
	opts := []solver.Option{
		solver.WithLogger(logger),
		solver.WithTolerance(o.Tolerance),
		solver.WithNodeLimit(o.NodeLimit),
		solver.WithParallelism(o.Parallelism),
	}
	if o.Rounding {
		opts = append(opts, solver.WithRoundingHeuristic())
	}

	var tracers multiTracer
	if o.Trace {
		tracers = append(tracers, search.LoggingTracer{Writer: out})
	}
	if o.Verbose > 1 {
		tracers = append(tracers, search.LogrTracer{Logger: logger})
	}
	if len(tracers) > 0 {
		opts = append(opts, solver.WithTracer(tracers))
	}
	return opts
}

type multiTracer []bnb.Tracer

func (m multiTracer) Trace(p bnb.SearchPosition) {
	for _, t := range m {
		t.Trace(p)
	}
}

// Report prints the solution of p to w.
func Report(w io.Writer, p *bnb.Problem, solution *solver.Solution) {
	if err := solution.Error(); err != nil {
		fmt.Fprintf(w, "no solution found: %s\n", err)
		fmt.Fprintf(w, "nodes evaluated: %d, branched: %d\n", solution.NodesEvaluated(), solution.NodesBranched())
		return
	}

	if solution.Optimal() {
		fmt.Fprintln(w, "optimal solution found:")
	} else {
		fmt.Fprintf(w, "search stopped early, best solution found (bound %.4f):\n", solution.Bound())
	}
	for _, id := range p.Variables {
		fmt.Fprintf(w, "%s = %d\n", id, solution.Value(id))
	}
	fmt.Fprintf(w, "objective: %g\n", solution.Objective())
	for _, r := range p.Resources {
		var used float64
		for id, a := range r.Coefficients {
			used += a * float64(solution.Value(id))
		}
		fmt.Fprintf(w, "%s: %g %s %g\n", resourceName(r), used, r.Operator, r.Capacity)
	}
	fmt.Fprintf(w, "nodes evaluated: %d, branched: %d\n", solution.NodesEvaluated(), solution.NodesBranched())
}

func resourceName(r bnb.Resource) string {
	if r.Name != "" {
		return r.Name
	}
	ids := make([]string, 0, len(r.Coefficients))
	for id := range r.Coefficients {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	return fmt.Sprintf("resource over %v", ids)
}
