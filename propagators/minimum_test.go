package propagators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannem1337/huub-solver/oracle"
	"github.com/dannem1337/huub-solver/propagators"
	"github.com/dannem1337/huub-solver/solver"
)

func TestMinimumEnforcesMinimumOfArray(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	a := e.NewIVar(solver.NewIntSet(1, 5))
	b := e.NewIVar(solver.NewIntSet(1, 5))
	c := e.NewIVar(solver.NewIntSet(1, 5))
	min := e.NewIVar(solver.NewIntSet(0, 10))

	e.Post(propagators.NewMinimum([]solver.IntView{
		solver.IntVarView(a), solver.IntVarView(b), solver.IntVarView(c),
	}, solver.IntVarView(min)), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	want := sol.ValueOf(a)
	if v := sol.ValueOf(b); v < want {
		want = v
	}
	if v := sol.ValueOf(c); v < want {
		want = v
	}
	assert.Equal(t, want, sol.ValueOf(min))
}

func TestMinimumTightUpperBoundPrunesMin(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	a := e.NewIVar(solver.NewIntSet(10, 20))
	b := e.NewIVar(solver.NewIntSet(10, 20))
	min := e.NewIVar(solver.NewIntSet(0, 100))

	e.Post(propagators.NewMinimum([]solver.IntView{
		solver.IntVarView(a), solver.IntVarView(b),
	}, solver.IntVarView(min)), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sol.ValueOf(min), int64(10))
	assert.LessOrEqual(t, sol.ValueOf(min), int64(20))
}

func TestMinimumLowerBoundClampsVars(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	a := e.NewIVar(solver.NewIntSet(0, 20))
	b := e.NewIVar(solver.NewIntSet(0, 20))
	min := e.NewIVar(solver.NewIntSet(7, 7))

	e.Post(propagators.NewMinimum([]solver.IntView{
		solver.IntVarView(a), solver.IntVarView(b),
	}, solver.IntVarView(min)), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sol.ValueOf(a), int64(7))
	assert.GreaterOrEqual(t, sol.ValueOf(b), int64(7))
}
