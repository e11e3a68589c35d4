// Package oracle provides Oracle implementations the solver package's
// Engine can run against.
package oracle

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/dannem1337/huub-solver/solver"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// maxRefinements bounds the check-then-refine loop Gini uses to cope with
// not being able to receive mid-search callbacks (see the Gini doc
// comment). It is generous enough for any instance this adapter is meant
// for: one whose propagators only ever narrow domains that are already
// fully axiomatized into the CNF handed to the underlying solver.
const maxRefinements = 10000

// Gini adapts github.com/go-air/gini's CDCL solver as a solver.Oracle.
// Gini itself offers no mid-search callback mechanism, so this adapter
// cannot support propagators that create literals during search (a
// lazily-encoded IVar, for instance): it is meant for instances an Engine
// has fully, eagerly axiomatized into CNF before Solve is ever called.
// Within that restriction it runs a check-then-refine loop: solve the CNF,
// ask the attached propagators whether they agree the model is complete
// (Hooks.CheckSolution), and if not, learn the clause the oracle reports
// and solve again. For an Oracle with genuine mid-search theory
// propagation, see Reference.
type Gini struct {
	g        *gini.Gini
	observed []z.Var
	hooks    solver.Hooks
}

// NewGini returns an empty Gini oracle.
func NewGini() *Gini {
	return &Gini{g: gini.New()}
}

var _ solver.Oracle = (*Gini)(nil)

// NewVar implements solver.Oracle.
func (o *Gini) NewVar() z.Lit {
	return o.g.Lit()
}

// NewVarRange implements solver.Oracle. It relies on gini allocating
// variables with consecutive indices across back-to-back Lit() calls,
// which holds as long as nothing else allocates a variable in between.
func (o *Gini) NewVarRange(n int) z.Lit {
	if n <= 0 {
		return z.LitNull
	}
	first := o.g.Lit()
	for i := 1; i < n; i++ {
		o.g.Lit()
	}
	return first
}

// AddClause implements solver.Oracle.
func (o *Gini) AddClause(lits ...z.Lit) {
	for _, lit := range lits {
		o.g.Add(lit)
	}
	o.g.Add(z.LitNull)
}

// AddObservedVar implements solver.Oracle.
func (o *Gini) AddObservedVar(v z.Var) {
	o.observed = append(o.observed, v)
}

// Value implements solver.Oracle.
func (o *Gini) Value(lit z.Lit) (bool, bool) {
	return o.g.Value(lit), true
}

// Attach implements solver.Oracle.
func (o *Gini) Attach(hooks solver.Hooks) {
	o.hooks = hooks
}

// Solve implements solver.Oracle via the check-then-refine loop described
// in the type doc comment.
func (o *Gini) Solve(assumptions []z.Lit) solver.SolveOutcome {
	o.hooks.NotifyNewDecisionLevel()
	o.g.Assume(assumptions...)
	for i := 0; i < maxRefinements; i++ {
		switch o.g.Solve() {
		case unsatisfiable:
			return solver.OutcomeUnsat
		case satisfiable:
			model := make([]z.Lit, 0, len(o.observed))
			for _, v := range o.observed {
				lit := z.Lit(v) << 1 // the positive literal of v
				if !o.g.Value(lit) {
					lit = lit.Not()
				}
				model = append(model, lit)
			}
			o.hooks.NotifyAssignments(model)
			if o.hooks.CheckSolution() {
				return solver.OutcomeSat
			}
			for {
				clause, ok := o.hooks.AddExternalClause()
				if !ok {
					break
				}
				o.AddClause(clause...)
			}
			o.hooks.NotifyBacktrack(0, false)
			o.g.Assume(assumptions...)
		default:
			return solver.OutcomeUnknown
		}
	}
	return solver.OutcomeUnknown
}
