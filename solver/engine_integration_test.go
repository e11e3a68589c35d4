package solver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannem1337/huub-solver/oracle"
	"github.com/dannem1337/huub-solver/propagators"
	"github.com/dannem1337/huub-solver/solver"
)

// TestEngineSolveLinearLE exercises the full stack end to end: an eagerly
// encoded IVar domain, a bounds-consistent LinearLE propagator, and the
// Reference oracle's DPLL search (decide/propagate/backtrack) driving the
// engine via the external-propagator protocol.
func TestEngineSolveLinearLE(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(0, 5))
	y := e.NewIVar(solver.NewIntSet(0, 5))

	e.Post(propagators.NewLinearLE([]solver.IntView{
		solver.IntVarView(x), solver.IntVarView(y),
	}, 4), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	assert.LessOrEqual(t, sol.ValueOf(x)+sol.ValueOf(y), int64(4))
	assert.GreaterOrEqual(t, sol.ValueOf(x), int64(0))
	assert.GreaterOrEqual(t, sol.ValueOf(y), int64(0))
}

// TestEngineSolveLinearLEUnsatisfiable drives the same propagator into a
// region with no solution, checking the conflict-driven backtracking fix in
// oracle.Reference actually proves unsatisfiability rather than looping.
func TestEngineSolveLinearLEUnsatisfiable(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(3, 5))
	y := e.NewIVar(solver.NewIntSet(3, 5))

	e.Post(propagators.NewLinearLE([]solver.IntView{
		solver.IntVarView(x), solver.IntVarView(y),
	}, 4), solver.PriorityLow)

	_, err := e.Solve()
	require.Error(t, err)
	assert.IsType(t, solver.NotSatisfiable{}, err)
}

// TestEngineBranchAndBoundMinimize checks the naive solve-exclude-resolve
// optimization loop against a constraint whose minimum is easy to verify by
// hand.
func TestEngineBranchAndBoundMinimize(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(0, 9))
	y := e.NewIVar(solver.NewIntSet(0, 9))

	// x + y >= 6, minimize x: optimal x should be as small as possible
	// while some y in [0,9] keeps the sum feasible, i.e. x can reach 0.
	e.Post(propagators.NewLinearLE([]solver.IntView{
		solver.IntVarView(x).Scale(-1, 0), solver.IntVarView(y).Scale(-1, 0),
	}, -6), solver.PriorityLow)

	sol, err := e.BranchAndBound(x, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sol.ValueOf(x))
	assert.GreaterOrEqual(t, sol.ValueOf(x)+sol.ValueOf(y), int64(6))
}

// TestEngineAllSolutionsSmallDomain enumerates every solution of a tiny CSP
// and checks both that every one found is feasible and that none is
// repeated.
func TestEngineAllSolutionsSmallDomain(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(0, 2))
	y := e.NewIVar(solver.NewIntSet(0, 2))

	e.Post(propagators.NewLinearLE([]solver.IntView{
		solver.IntVarView(x), solver.IntVarView(y),
	}, 2), solver.PriorityLow)

	seen := map[[2]int64]bool{}
	err := e.AllSolutions([]solver.IVarRef{x, y}, func(sol solver.Solution) bool {
		key := [2]int64{sol.ValueOf(x), sol.ValueOf(y)}
		assert.False(t, seen[key], "solution %v enumerated twice", key)
		seen[key] = true
		assert.LessOrEqual(t, key[0]+key[1], int64(2))
		return true
	})
	require.NoError(t, err)
	assert.NotEmpty(t, seen)
}
