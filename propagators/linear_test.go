package propagators_test

import (
	"testing"

	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannem1337/huub-solver/oracle"
	"github.com/dannem1337/huub-solver/propagators"
	"github.com/dannem1337/huub-solver/solver"
)

func TestLinearLESatisfiesBound(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(0, 10))
	y := e.NewIVar(solver.NewIntSet(0, 10))
	zv := e.NewIVar(solver.NewIntSet(0, 10))

	e.Post(propagators.NewLinearLE([]solver.IntView{
		solver.IntVarView(x), solver.IntVarView(y), solver.IntVarView(zv),
	}, 7), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	assert.LessOrEqual(t, sol.ValueOf(x)+sol.ValueOf(y)+sol.ValueOf(zv), int64(7))
}

// TestLinearLEReifiedFalseDisablesConstraint checks that, once reif is
// forced false via an assumption, the constraint no longer bounds x.
func TestLinearLEReifiedFalseDisablesConstraint(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(0, 10))
	y := e.NewIVar(solver.NewIntSet(0, 1))
	reifLit := e.BoolLit(y, solver.Eq(1))
	reif := solver.LitBView(reifLit)

	e.Post(propagators.NewLinearLEImp([]solver.IntView{solver.IntVarView(x)}, 2, reif), solver.PriorityLow)

	sol, err := e.SolveAssuming([]z.Lit{reifLit.Not()})
	require.NoError(t, err)
	assert.Equal(t, int64(0), sol.ValueOf(y))
	assert.GreaterOrEqual(t, sol.ValueOf(x), int64(0))
}

// TestLinearLEReifiedTrueEnforcesConstraint is the mirror case: forcing reif
// true must bound x exactly as the unreified constraint would.
func TestLinearLEReifiedTrueEnforcesConstraint(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(0, 10))
	y := e.NewIVar(solver.NewIntSet(0, 1))
	reifLit := e.BoolLit(y, solver.Eq(1))
	reif := solver.LitBView(reifLit)

	e.Post(propagators.NewLinearLEImp([]solver.IntView{solver.IntVarView(x)}, 2, reif), solver.PriorityLow)

	sol, err := e.SolveAssuming([]z.Lit{reifLit})
	require.NoError(t, err)
	assert.LessOrEqual(t, sol.ValueOf(x), int64(2))
}

func TestLinearLEUnreifiedUnsatisfiable(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	x := e.NewIVar(solver.NewIntSet(5, 10))
	y := e.NewIVar(solver.NewIntSet(5, 10))

	e.Post(propagators.NewLinearLE([]solver.IntView{
		solver.IntVarView(x), solver.IntVarView(y),
	}, 3), solver.PriorityLow)

	_, err := e.Solve()
	require.Error(t, err)
	assert.IsType(t, solver.NotSatisfiable{}, err)
}
