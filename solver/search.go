package solver

import (
	"fmt"

	"github.com/go-air/gini/z"
)

// Solution is a satisfying assignment: the value each IVar took in the
// model the oracle found.
type Solution struct {
	values []int64
}

// ValueOf returns ref's value in this solution.
func (s Solution) ValueOf(ref IVarRef) int64 {
	return s.values[ref]
}

// Solve attaches the Engine to its Oracle (if not already attached) and
// runs search to completion under no assumptions, per spec.md §5's top
// level entry point.
func (e *Engine) Solve() (Solution, error) {
	return e.SolveAssuming(nil)
}

// SolveAssuming runs search under the given assumption literals, e.g. to
// probe a hypothesis without retracting it from the Engine permanently.
func (e *Engine) SolveAssuming(assumptions []z.Lit) (Solution, error) {
	e.attachOnce()
	switch e.oracle.Solve(assumptions) {
	case OutcomeSat:
		return e.readSolution(), nil
	case OutcomeUnsat:
		return Solution{}, NotSatisfiable{}
	default:
		return Solution{}, Unknown{Reason: "oracle reported an inconclusive result"}
	}
}

// BranchAndBound repeatedly solves, tightening objective's bound past the
// best model found so far by 1 each time (its upper bound below it when
// minimizing, its lower bound above it when maximizing; objective is
// assumed integer-valued), until the oracle reports unsatisfiable, returning the
// best solution found (if any). It implements spec.md §5's optimization
// entry point via the naïve "solve, then exclude, repeat" strategy,
// appropriate for a reference engine; a production caller wanting a tighter
// search would instead post its own bounding propagator.
func (e *Engine) BranchAndBound(objective IVarRef, minimize bool) (Solution, error) {
	e.attachOnce()
	var best Solution
	found := false
	for {
		sol, err := e.Solve()
		if err != nil {
			if found {
				return best, nil
			}
			return Solution{}, err
		}
		best = sol
		found = true
		v := sol.ValueOf(objective)
		var bound LitMeaning
		if minimize {
			bound = Less(v)
		} else {
			bound = GreaterEq(v + 1)
		}
		lit := e.BoolLit(objective, bound)
		e.pendingClauses = append(e.pendingClauses, []z.Lit{lit})
		e.oracle.AddClause(lit)
	}
}

// AllSolutions enumerates every satisfying assignment by blocking each one
// found (adding a clause forbidding exactly that combination of the given
// IVars' values) and re-solving, per spec.md §5. It calls yield for each
// solution found and stops early if yield returns false.
func (e *Engine) AllSolutions(vars []IVarRef, yield func(Solution) bool) error {
	e.attachOnce()
	for {
		sol, err := e.Solve()
		if err != nil {
			if _, ok := err.(NotSatisfiable); ok {
				return nil
			}
			return err
		}
		if !yield(sol) {
			return nil
		}
		block := make([]z.Lit, 0, len(vars))
		for _, v := range vars {
			lit := e.BoolLit(v, NotEq(sol.ValueOf(v)))
			block = append(block, lit)
		}
		e.oracle.AddClause(block...)
	}
}

func (e *Engine) attachOnce() {
	if !e.attached {
		e.oracle.Attach(e)
		e.attached = true
	}
}

// readSolution reads every IVar's current fixed value off the trail. It
// must only be called once the oracle reports a satisfying assignment.
func (e *Engine) readSolution() Solution {
	values := make([]int64, len(e.ivars))
	for i, st := range e.ivars {
		lb, ub := e.trail.Get(st.lb), e.trail.Get(st.ub)
		if lb != ub {
			e.logDebug(fmt.Sprintf("ivar %d not fixed at solution time: [%d,%d]", i, lb, ub))
		}
		values[i] = lb
	}
	return Solution{values: values}
}
