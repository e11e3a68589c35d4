package solver

import "github.com/go-air/gini/z"

// Reason explains why a propagator forced a literal, or why it signalled a
// conflict. Three shapes exist (spec.md §4.6): a single antecedent
// literal, an eagerly-built conjunction of antecedent literals, or a
// deferred token the propagator resolves into a conjunction only if the
// oracle ever actually asks for it (a lazy reason).
type Reason struct {
	kind     reasonKind
	lit      z.Lit
	lits     []z.Lit
	prop     PropRef
	data     int64
}

type reasonKind uint8

const (
	reasonSimple   reasonKind = iota // single antecedent literal
	reasonEager                      // owned conjunction of antecedents
	reasonDeferred                   // (PropRef, data) token, resolved lazily
	reasonTrue                       // the literal needs no explanation (a fact)
)

// ReasonLit builds a reason from a single antecedent literal.
func ReasonLit(lit z.Lit) Reason {
	return Reason{kind: reasonSimple, lit: lit}
}

// ReasonAnd builds a reason from a conjunction of antecedent literals,
// copying the slice so the caller may reuse its backing array.
func ReasonAnd(lits []z.Lit) Reason {
	return Reason{kind: reasonEager, lits: append([]z.Lit(nil), lits...)}
}

// ReasonDeferred builds a lazy reason: prop will be asked, via
// Propagator.Explain, to produce the actual antecedents only if the oracle
// ends up needing this clause. data is opaque state the propagator
// threads through to its own Explain method (e.g. which coefficient index
// triggered the propagation).
func ReasonDeferred(prop PropRef, data int64) Reason {
	return Reason{kind: reasonDeferred, prop: prop, data: data}
}

// ReasonTrue marks a propagated literal as needing no explanation: a
// literal that is unconditionally true (e.g. the encoding-consistency
// clauses for an IVar's own bounds) collapses any reason that would cite
// it as an antecedent, per spec.md §4.6's trivial-true rule.
func ReasonTrue() Reason {
	return Reason{kind: reasonTrue}
}

// IsTrivial reports whether r was built with ReasonTrue.
func (r Reason) IsTrivial() bool {
	return r.kind == reasonTrue
}

// reasonStore owns every Reason handed out for a propagated literal,
// keyed by the literal's variable, so AddReasonClause can look it up long
// after propagation returned. Engine.NotifyBacktrack clears entries on
// backtrack past the level at which they were recorded (the trailPos
// field holds the decision level they were pushed at).
type reasonStore struct {
	m map[z.Var]storedReason
}

type storedReason struct {
	reason   Reason
	trailPos int
}

func newReasonStore() *reasonStore {
	return &reasonStore{m: make(map[z.Var]storedReason)}
}

func (s *reasonStore) Put(v z.Var, r Reason, trailPos int) {
	s.m[v] = storedReason{reason: r, trailPos: trailPos}
}

func (s *reasonStore) Get(v z.Var) (Reason, bool) {
	e, ok := s.m[v]
	if !ok {
		return Reason{}, false
	}
	return e.reason, true
}

func (s *reasonStore) Delete(v z.Var) {
	delete(s.m, v)
}

// ExplainActions is the narrow set of engine queries a deferred reason may
// need to rebuild its antecedents: the trail has already been repositioned
// (via Trail.GotoAssignLit) to the moment the literal being explained was
// first assigned, so these calls reflect historical, not current, state.
type ExplainActions interface {
	LowerBound(v IVarRef) int64
	UpperBound(v IVarRef) int64
	// Lit returns the literal for m on v, creating it if necessary.
	Lit(v IVarRef, m LitMeaning) z.Lit
	// InDomain reports whether val lay in v's domain at this historical
	// trail position.
	InDomain(v IVarRef, val int64) bool
	// BoolValue reads b's truth value at this historical trail position, for
	// views built directly over a Boolean literal.
	BoolValue(b BView) (value bool, assigned bool)
}

// Explainer is implemented by propagators that post deferred reasons. When
// the oracle demands the clause for a literal whose Reason is
// ReasonDeferred, the engine calls Explain on the propagator that posted
// it, passing back the literal, the opaque data the propagator supplied
// at propagation time, and an ExplainActions to rebuild antecedent
// literals against historical trail state.
type Explainer interface {
	Explain(lit z.Lit, data int64, actions ExplainActions) []z.Lit
}
