package solver

import "github.com/go-air/gini/z"

// Oracle is the contract an external CDCL SAT solver must offer to host
// this package's Engine as a lazy-clause-generation theory extension (the
// "external propagator" protocol of spec.md §6). The core SAT search loop
// itself — decision heuristics, clause learning, restarts — is entirely
// the oracle's responsibility and out of scope for this package
// (spec.md §1); this interface is the full extent of the integration
// contract.
//
// oracle.Gini and oracle.Reference, in the sibling oracle package, are two
// concrete implementations: the former adapts github.com/go-air/gini for
// instances that never create a literal after the initial CNF is handed
// over, the latter is a small reference implementation used to exercise
// this contract end to end in tests.
type Oracle interface {
	// NewVar allocates a single fresh Boolean variable and returns its
	// positive literal.
	NewVar() z.Lit
	// NewVarRange allocates n consecutive fresh variables, returning the
	// positive literal of the first.
	NewVarRange(n int) z.Lit
	// AddClause teaches the oracle a clause. It may be called before
	// search starts (defining clauses for eager encodings) or during
	// search (reason/conflict clauses, via AddExternalClause on the
	// Hooks side).
	AddClause(lits ...z.Lit)
	// AddObservedVar registers v as a variable the oracle must report to
	// NotifyAssignments whenever it is assigned, even if the oracle's own
	// heuristics would not otherwise expose the assignment to a
	// propagator (e.g. because the variable does not appear in any
	// clause the oracle is aware of).
	AddObservedVar(v z.Var)
	// Value returns lit's current assigned value, if any.
	Value(lit z.Lit) (value bool, assigned bool)
	// Attach registers hooks as the external-propagator callback target
	// for every subsequent Solve call.
	Attach(hooks Hooks)
	// Solve runs the CDCL search loop to completion (or until a limit
	// configured on the Oracle itself is hit), invoking hooks throughout
	// per the external-propagator protocol, under the given assumptions.
	Solve(assumptions []z.Lit) SolveOutcome
}

// SolveOutcome is the terminal status Oracle.Solve reports.
type SolveOutcome uint8

const (
	OutcomeSat SolveOutcome = iota
	OutcomeUnsat
	OutcomeUnknown
)

// Hooks is the set of callbacks an Oracle invokes on the Engine during
// search, corresponding one-to-one with spec.md §4.9's bullet list and the
// "Core → oracle interface" hooks of spec.md §6. Engine implements Hooks.
type Hooks interface {
	// NotifyNewDecisionLevel is called when the oracle opens a new
	// decision level. Precondition: no pending propagations, no
	// unreported conflict, no unreported clauses.
	NotifyNewDecisionLevel()
	// NotifyAssignments is called with the literals the oracle has newly
	// assigned since the last call.
	NotifyAssignments(lits []z.Lit)
	// NotifyBacktrack is called when the oracle backtracks to level.
	// restart is true when the backtrack is part of a restart (as
	// opposed to a conflict-driven backjump).
	NotifyBacktrack(level int, restart bool)
	// Propagate runs posted propagators to fixpoint and returns the
	// literals they propagated, in order, along with whether a conflict
	// was encountered. Reasons for the returned literals (and for a
	// conflict) are retrievable via AddReasonClause / AddExternalClause.
	Propagate() (propagated []z.Lit, conflict bool)
	// AddReasonClause returns the reason clause for a previously
	// propagated literal, as [lit, ¬r_1, ..., ¬r_k].
	AddReasonClause(lit z.Lit) []z.Lit
	// AddExternalClause delivers the next queued defining/learned clause,
	// or the pending conflict clause if one is outstanding, to the
	// oracle. ok is false once nothing remains to deliver.
	AddExternalClause() (clause []z.Lit, ok bool)
	// CheckSolution is invoked when the oracle believes it has a complete
	// model. It returns false if running every posted propagator once more
	// over that model reports a conflict, true otherwise. IVars whose
	// bounds are still open in the model are not fixed to a value by it.
	CheckSolution() bool
	// Decide is called when the oracle wants a decision literal. free is
	// true if the engine has no opinion and the oracle should use its own
	// heuristic (VSIDS) instead.
	Decide() (lit z.Lit, free bool)
	// SettleExplanations must be called after a batch of AddReasonClause
	// requests that is not immediately followed by a backtrack, since
	// answering them may have repositioned internal historical-state
	// bookkeeping that only a backtrack otherwise realigns.
	SettleExplanations()
}
