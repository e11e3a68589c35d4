package oracle

import (
	"github.com/go-air/gini/z"

	"github.com/dannem1337/huub-solver/solver"
)

// Reference is a small DPLL solver with full support for the
// external-propagator protocol: unlike Gini, it calls back into its
// attached Hooks after every round of unit propagation and before every
// decision, so propagators may create literals mid-search. It favors
// clarity over performance (chronological backtracking, no clause
// learning) and exists to exercise solver.Engine end to end in tests
// without depending on a production CDCL implementation supporting the
// same callback surface.
type Reference struct {
	clauses  [][]z.Lit
	watchers map[z.Lit][]int

	assign   []int8 // indexed by z.Var; 0 unassigned, 1 true, -1 false
	trail    []z.Lit
	levels   []int // trail length at the start of each decision level
	branch   []branchEntry
	notified int // trail length already reported via NotifyAssignments

	observed map[z.Var]bool
	hooks    solver.Hooks
}

// branchEntry records, for one open decision level, the literal chosen
// and whether its negation has already been tried — the bookkeeping
// chronological (non-learning) DPLL needs to guarantee completeness: a
// level is only abandoned upward once both polarities have failed.
type branchEntry struct {
	lit     z.Lit
	flipped bool
}

// NewReference returns an empty Reference oracle.
func NewReference() *Reference {
	return &Reference{
		assign:   make([]int8, 1), // variable 0 is reserved, mirroring z.LitNull
		watchers: make(map[z.Lit][]int),
		observed: make(map[z.Var]bool),
	}
}

var _ solver.Oracle = (*Reference)(nil)

func (o *Reference) grow(v z.Var) {
	if int(v) < len(o.assign) {
		return
	}
	grown := make([]int8, int(v)+1)
	copy(grown, o.assign)
	o.assign = grown
}

// NewVar implements solver.Oracle.
func (o *Reference) NewVar() z.Lit {
	v := z.Var(len(o.assign))
	o.grow(v)
	return z.Lit(v) << 1
}

// NewVarRange implements solver.Oracle.
func (o *Reference) NewVarRange(n int) z.Lit {
	if n <= 0 {
		return z.LitNull
	}
	first := o.NewVar()
	for i := 1; i < n; i++ {
		o.NewVar()
	}
	return first
}

// AddClause implements solver.Oracle.
func (o *Reference) AddClause(lits ...z.Lit) {
	clause := append([]z.Lit(nil), lits...)
	for _, lit := range clause {
		o.grow(lit.Var())
	}
	idx := len(o.clauses)
	o.clauses = append(o.clauses, clause)
	n := len(clause)
	for i := 0; i < n && i < 2; i++ {
		o.watchers[clause[i]] = append(o.watchers[clause[i]], idx)
	}
}

// AddObservedVar implements solver.Oracle.
func (o *Reference) AddObservedVar(v z.Var) {
	o.observed[v] = true
}

// Value implements solver.Oracle.
func (o *Reference) Value(lit z.Lit) (bool, bool) {
	v := int(lit.Var())
	if v >= len(o.assign) || o.assign[v] == 0 {
		return false, false
	}
	val := o.assign[v] == 1
	if !lit.IsPos() {
		val = !val
	}
	return val, true
}

// Attach implements solver.Oracle.
func (o *Reference) Attach(hooks solver.Hooks) {
	o.hooks = hooks
}

func (o *Reference) litValue(lit z.Lit) int8 {
	v := o.assign[lit.Var()]
	if v == 0 || lit.IsPos() {
		return v
	}
	return -v
}

// assume assigns lit (which must currently be unassigned) and pushes it to
// the trail.
func (o *Reference) assume(lit z.Lit) {
	val := int8(1)
	if !lit.IsPos() {
		val = -1
	}
	o.assign[lit.Var()] = val
	o.trail = append(o.trail, lit)
}

// unitPropagate scans every clause for unit/conflict status until
// fixpoint. It is intentionally simple (full clause scan, not real
// two-watched-literal propagation) to keep the reference implementation
// easy to follow. It returns the conflicting clause's index, or -1.
func (o *Reference) unitPropagate() int {
	for {
		progressed := false
		for ci, clause := range o.clauses {
			unassignedCount := 0
			var unit z.Lit
			satisfied := false
			for _, lit := range clause {
				switch o.litValue(lit) {
				case 1:
					satisfied = true
				case 0:
					unassignedCount++
					unit = lit
				}
			}
			if satisfied {
				continue
			}
			if unassignedCount == 0 {
				return ci
			}
			if unassignedCount == 1 {
				o.assume(unit)
				progressed = true
			}
		}
		if !progressed {
			return -1
		}
	}
}

// backtrackTo undoes every assignment made at or after decision level
// level (0-based; level 0 is the first decision), leaving exactly level
// decision levels open.
func (o *Reference) backtrackTo(level int) {
	if level >= len(o.levels) {
		return
	}
	cut := o.levels[level]
	for i := len(o.trail) - 1; i >= cut; i-- {
		o.assign[o.trail[i].Var()] = 0
	}
	o.trail = o.trail[:cut]
	o.levels = o.levels[:level]
	o.branch = o.branch[:level]
	if o.notified > len(o.trail) {
		o.notified = len(o.trail)
	}
	o.hooks.NotifyBacktrack(level, false)
}

// decide opens a new decision level and assumes lit, recording it as the
// not-yet-flipped branch of that level.
func (o *Reference) decide(lit z.Lit) {
	o.levels = append(o.levels, len(o.trail))
	o.hooks.NotifyNewDecisionLevel()
	o.branch = append(o.branch, branchEntry{lit: lit})
	o.assume(lit)
}

// resolveConflict backtracks chronologically from the current conflict,
// retrying the untried polarity of the nearest open decision level before
// giving up on it entirely. It reports false only once every level has
// been exhausted both ways, meaning the instance is unsatisfiable.
func (o *Reference) resolveConflict() bool {
	for len(o.levels) > 0 {
		l := len(o.levels) - 1
		entry := o.branch[l]
		if !entry.flipped {
			flip := entry.lit.Not()
			o.backtrackTo(l)
			o.decide(flip)
			o.branch[l].flipped = true
			return true
		}
		o.backtrackTo(l)
	}
	return false
}

// checkReasonsSound requests the reason the engine recorded for each
// literal it just propagated and checks the soundness property every
// reason must hold: a clause [lit, ¬r_1, ..., ¬r_k] only justifies lit if
// every antecedent r_i is currently assigned true. Neither this loop's
// conflict handling (chronological backtracking needs no learned clause)
// nor oracle.Gini's check-then-refine loop ever calls AddReasonClause, so
// this is the only place that actually exercises Engine.expand and every
// propagator's Explain against a live search. It panics on a violation,
// appropriate for a reference oracle whose job is to catch exactly this.
func (o *Reference) checkReasonsSound(lits []z.Lit) {
	if len(lits) == 0 {
		return
	}
	for _, lit := range lits {
		clause := o.hooks.AddReasonClause(lit)
		if len(clause) == 0 || clause[0] != lit {
			panic("oracle: reason clause did not lead with the literal it explains")
		}
		for _, antecedentNeg := range clause[1:] {
			if o.litValue(antecedentNeg) != -1 {
				panic("oracle: reason cites an antecedent that is not currently assigned true")
			}
		}
	}
	o.hooks.SettleExplanations()
}

func (o *Reference) firstUnassigned() (z.Var, bool) {
	for v := 1; v < len(o.assign); v++ {
		if o.assign[v] == 0 {
			return z.Var(v), true
		}
	}
	return 0, false
}

// Solve implements solver.Oracle.
func (o *Reference) Solve(assumptions []z.Lit) solver.SolveOutcome {
	for _, lit := range assumptions {
		if v := o.litValue(lit); v == -1 {
			return solver.OutcomeUnsat
		} else if v == 0 {
			// An assumption is a forced decision that is never retried with
			// its negation: if it conflicts, the whole call is unsat.
			o.decide(lit)
			o.branch[len(o.branch)-1].flipped = true
		}
	}

	for {
		if ci := o.unitPropagate(); ci >= 0 {
			if !o.resolveConflict() {
				return solver.OutcomeUnsat
			}
			continue
		}

		if o.notified < len(o.trail) {
			newLits := append([]z.Lit(nil), o.trail[o.notified:]...)
			o.notified = len(o.trail)
			o.hooks.NotifyAssignments(newLits)
		}
		propagated, conflict := o.hooks.Propagate()
		if conflict {
			if !o.resolveConflict() {
				return solver.OutcomeUnsat
			}
			continue
		}
		settledAny := false
		for _, lit := range propagated {
			if v := o.litValue(lit); v == 0 {
				o.assume(lit)
				settledAny = true
			}
		}
		o.checkReasonsSound(propagated)
		if settledAny {
			continue
		}

		if _, ok := o.firstUnassigned(); !ok {
			if o.hooks.CheckSolution() {
				return solver.OutcomeSat
			}
			drained := false
			for {
				clause, ok := o.hooks.AddExternalClause()
				if !ok {
					break
				}
				o.AddClause(clause...)
				drained = true
			}
			if !drained {
				return solver.OutcomeUnknown
			}
			continue
		}

		lit, free := o.hooks.Decide()
		if free {
			v, _ := o.firstUnassigned()
			lit = z.Lit(v) << 1
		}
		o.decide(lit)
	}
}

