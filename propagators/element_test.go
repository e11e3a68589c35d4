package propagators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannem1337/huub-solver/oracle"
	"github.com/dannem1337/huub-solver/propagators"
	"github.com/dannem1337/huub-solver/solver"
)

func TestElementEnforcesResultEqualsIndexedVar(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	vars := []solver.IVarRef{
		e.NewIVar(solver.NewIntSet(10, 10)),
		e.NewIVar(solver.NewIntSet(20, 20)),
		e.NewIVar(solver.NewIntSet(30, 30)),
	}
	index := e.NewIVar(solver.NewIntSet(0, 2))
	result := e.NewIVar(solver.NewIntSet(0, 100))

	views := make([]solver.IntView, len(vars))
	for i, v := range vars {
		views[i] = solver.IntVarView(v)
	}
	e.Post(propagators.NewElement(views, solver.IntVarView(index), solver.IntVarView(result)), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	idx := sol.ValueOf(index)
	assert.Equal(t, sol.ValueOf(vars[idx]), sol.ValueOf(result))
}

func TestElementFixedIndexFixesResult(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	vars := []solver.IVarRef{
		e.NewIVar(solver.NewIntSet(5, 5)),
		e.NewIVar(solver.NewIntSet(9, 9)),
	}
	index := e.NewIVar(solver.NewIntSet(1, 1))
	result := e.NewIVar(solver.NewIntSet(0, 100))

	views := []solver.IntView{solver.IntVarView(vars[0]), solver.IntVarView(vars[1])}
	e.Post(propagators.NewElement(views, solver.IntVarView(index), solver.IntVarView(result)), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	assert.Equal(t, int64(9), sol.ValueOf(result))
}

func TestElementResultBoundsPruneIndex(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	vars := []solver.IVarRef{
		e.NewIVar(solver.NewIntSet(100, 100)),
		e.NewIVar(solver.NewIntSet(1, 1)),
	}
	index := e.NewIVar(solver.NewIntSet(0, 1))
	result := e.NewIVar(solver.NewIntSet(0, 5))

	views := []solver.IntView{solver.IntVarView(vars[0]), solver.IntVarView(vars[1])}
	e.Post(propagators.NewElement(views, solver.IntVarView(index), solver.IntVarView(result)), solver.PriorityLow)

	sol, err := e.Solve()
	require.NoError(t, err)
	// vars[0]=100 is out of result's range [0,5], so index must settle on 1.
	assert.Equal(t, int64(1), sol.ValueOf(index))
	assert.Equal(t, int64(1), sol.ValueOf(result))
}

func TestElementUnsatisfiableWhenNoVarFitsResult(t *testing.T) {
	e := solver.NewEngine(oracle.NewReference())
	vars := []solver.IVarRef{
		e.NewIVar(solver.NewIntSet(100, 100)),
		e.NewIVar(solver.NewIntSet(200, 200)),
	}
	index := e.NewIVar(solver.NewIntSet(0, 1))
	result := e.NewIVar(solver.NewIntSet(0, 5))

	views := []solver.IntView{solver.IntVarView(vars[0]), solver.IntVarView(vars[1])}
	e.Post(propagators.NewElement(views, solver.IntVarView(index), solver.IntVarView(result)), solver.PriorityLow)

	_, err := e.Solve()
	require.Error(t, err)
	assert.IsType(t, solver.NotSatisfiable{}, err)
}
