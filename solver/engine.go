package solver

import (
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Engine is the lazy-clause-generation core: it owns the trail, the
// integer variable store, the Boolean/integer literal map, the
// propagator/brancher fixpoint machinery, and the reason store, and
// implements Hooks so an Oracle can drive it as an external-propagator
// theory (spec.md §4.9). Engine is constructed via NewEngine and
// configured with Post/PostBrancher before search starts; once an Oracle
// is attached (Attach) it must not be reconfigured.
type Engine struct {
	trail      *Trail
	oracle     Oracle
	boolIntMap *BoolIntMap
	ivars      []*ivarState

	queue       *propQueue
	activations *activationList
	reasons     *reasonStore

	props        []Propagator
	propPriority []Priority
	branchers    []Brancher

	pendingClauses [][]z.Lit
	conflict       []z.Lit
	boolWatches    map[z.Var][]activation

	attached bool
	litTrue  z.Lit // a fixed literal asserted true at construction time

	log       *logrus.Logger
	tracer    Tracer
	decisions []z.Lit
}

// EngineOption configures an Engine at construction time, following the
// functional-options pattern this package's ancestor uses throughout.
type EngineOption func(*Engine)

// WithLogger attaches a structured logger. If omitted, Engine logs
// nothing.
func WithLogger(l *logrus.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithTracer attaches a search tracer. If omitted, Engine uses
// DefaultTracer.
func WithTracer(t Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine returns an Engine with no IVars, propagators, or branchers
// posted yet.
func NewEngine(oracle Oracle, opts ...EngineOption) *Engine {
	e := &Engine{
		trail:       NewTrail(),
		oracle:      oracle,
		boolIntMap:  NewBoolIntMap(),
		queue:       newPropQueue(),
		activations: newActivationList(),
		reasons:     newReasonStore(),
		boolWatches: make(map[z.Var][]activation),
		tracer:      DefaultTracer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.trail.TrackInt(0) // reserve CurrentBrancher
	e.litTrue = e.oracle.NewVar()
	e.oracle.AddClause(e.litTrue)
	return e
}

// litFalse is the fixed literal asserted false at construction time.
func (e *Engine) litFalse() z.Lit {
	return e.litTrue.Not()
}

// Post registers propagator against the engine at lvl, invoking its
// Subscribe method so it starts receiving activations, and returns a
// PropRef identifying it for use in deferred reasons.
func (e *Engine) Post(p Propagator, lvl Priority) PropRef {
	ref := PropRef(len(e.props))
	e.props = append(e.props, p)
	e.propPriority = append(e.propPriority, lvl)
	p.Subscribe(&engineSubscriber{e: e, prop: ref, lvl: lvl})
	e.queue.Push(ref, lvl)
	return ref
}

// PostBrancher appends b to the list of branchers consulted, in posting
// order, whenever the oracle asks for a free decision.
func (e *Engine) PostBrancher(b Brancher) {
	e.branchers = append(e.branchers, b)
}

// logDebug is a no-op if no logger was configured (spec.md's ambient
// stack: logging must never be load-bearing for correctness).
func (e *Engine) logDebug(args ...interface{}) {
	if e.log != nil {
		e.log.Debug(args...)
	}
}

// --- Hooks implementation -------------------------------------------------

var _ Hooks = (*Engine)(nil)
var _ ExplainActions = (*Engine)(nil)

// NotifyNewDecisionLevel implements Hooks. The decision literal itself is
// not known yet at this point (the oracle reports it via the next
// NotifyAssignments call); a nil placeholder is recorded and filled in once
// that call arrives.
func (e *Engine) NotifyNewDecisionLevel() {
	e.trail.NotifyNewDecisionLevel()
	e.decisions = append(e.decisions, z.LitNull)
}

// NotifyAssignments implements Hooks. Per spec.md §4.9, a literal already on
// the trail is appended and skipped, not re-processed: GotoAssignLit's
// redo path can hand the same literal back across a settle, and re-running
// activateValue/activateBounds for it would be wasted work at best.
func (e *Engine) NotifyAssignments(lits []z.Lit) {
	if n := len(e.decisions); n > 0 && e.decisions[n-1] == z.LitNull && len(lits) > 0 {
		e.decisions[n-1] = lits[0]
	}
	for _, lit := range lits {
		e.trail.GrowToVar(lit.Var())
		_, hadPrev := e.trail.AssignLit(lit)
		if hadPrev {
			continue
		}
		if ivar, ok := e.boolIntMap.IVarOf(lit); ok {
			e.onLitAssigned(ivar, lit)
		}
		for _, act := range e.boolWatches[lit.Var()] {
			e.queue.Push(act.prop, act.lvl)
		}
	}
}

// NotifyBacktrack implements Hooks.
func (e *Engine) NotifyBacktrack(level int, restart bool) {
	e.trail.NotifyBacktrack(level)
	e.queue.Clear()
	if level < len(e.decisions) {
		e.decisions = e.decisions[:level]
	}
	for v, sr := range e.reasons.m {
		if sr.trailPos > level {
			delete(e.reasons.m, v)
		}
	}
	if restart {
		e.logDebug("restart to level ", level)
	}
}

// Propagate implements Hooks. It drains the fixpoint queue, running each
// propagator in turn and enqueueing whoever its Subscriptions say should
// react, stopping the instant any propagator reports a conflict.
func (e *Engine) Propagate() ([]z.Lit, bool) {
	var propagated []z.Lit
	ctx := &engineContext{e: e, propagated: &propagated}
	for {
		ref, ok := e.queue.Pop()
		if !ok {
			e.tracer.Trace(e.searchPosition())
			return propagated, false
		}
		p := e.props[ref]
		ctx.current = ref
		if !p.Propagate(ctx) {
			e.queue.Clear()
			e.tracer.Trace(e.searchPosition())
			return propagated, true
		}
	}
}

// searchPosition is the concrete SearchPosition Engine hands to its Tracer.
type searchPosition struct {
	decisions []z.Lit
	conflict  []z.Lit
}

func (p *searchPosition) DecisionLevel() int { return len(p.decisions) }
func (p *searchPosition) Decisions() []z.Lit { return p.decisions }
func (p *searchPosition) Conflict() []z.Lit  { return p.conflict }

func (e *Engine) searchPosition() SearchPosition {
	return &searchPosition{decisions: e.decisions, conflict: e.conflict}
}

// AddReasonClause implements Hooks.
func (e *Engine) AddReasonClause(lit z.Lit) []z.Lit {
	r, ok := e.reasons.Get(lit.Var())
	if !ok {
		return []z.Lit{lit}
	}
	return e.expand(lit, r)
}

func (e *Engine) expand(lit z.Lit, r Reason) []z.Lit {
	switch r.kind {
	case reasonTrue:
		return []z.Lit{lit}
	case reasonSimple:
		return []z.Lit{lit, r.lit.Not()}
	case reasonEager:
		clause := make([]z.Lit, 1, len(r.lits)+1)
		clause[0] = lit
		for _, a := range r.lits {
			clause = append(clause, a.Not())
		}
		return clause
	default: // reasonDeferred
		explainer, ok := e.props[r.prop].(Explainer)
		if !ok {
			panic(errors.Errorf("solver: propagator %q posted a deferred reason but does not implement Explainer", e.props[r.prop].Name()))
		}
		e.trail.GotoAssignLit(lit)
		antecedents := explainer.Explain(lit, r.data, e)
		clause := make([]z.Lit, 1, len(antecedents)+1)
		clause[0] = lit
		for _, a := range antecedents {
			clause = append(clause, a.Not())
		}
		return clause
	}
}

// buildConflict derives the conflict clause from lit's would-be reason and
// the reason already recorded for the contradictory assignment of
// lit.Not(), by resolving the two antecedent sets against each other (the
// unit literal itself cancels, since one reason asserts it and the other
// asserts its negation).
func (e *Engine) buildConflict(lit z.Lit, reason Reason) []z.Lit {
	clause := e.expand(lit, reason)[1:] // drop the head, keep ¬antecedents
	if prior, ok := e.reasons.Get(lit.Var()); ok {
		clause = append(clause, e.expand(lit.Not(), prior)[1:]...)
	}
	return clause
}

// AddExternalClause implements Hooks.
func (e *Engine) AddExternalClause() ([]z.Lit, bool) {
	if e.conflict != nil {
		c := e.conflict
		e.conflict = nil
		return c, true
	}
	if len(e.pendingClauses) == 0 {
		return nil, false
	}
	c := e.pendingClauses[0]
	e.pendingClauses = e.pendingClauses[1:]
	return c, true
}

// CheckSolution implements Hooks. Every propagator gets one last chance to
// veto a model it considers incomplete (e.g. a lazily-encoded IVar whose
// bounds narrowed to a single value only via propagation that an eager
// encoding would have exposed as a clause already).
func (e *Engine) CheckSolution() bool {
	ctx := &engineContext{e: e}
	for _, p := range e.props {
		if !p.Propagate(ctx) {
			return false
		}
	}
	return true
}

// Decide implements Hooks, consulting branchers in posting order starting
// from the one recorded in the CurrentBrancher trailed cell, so that a
// brancher which has run dry stays skipped across decisions within the
// same search path.
func (e *Engine) Decide() (z.Lit, bool) {
	ctx := &engineContext{e: e}
	start := int(e.trail.Get(CurrentBrancher))
	for idx := start; idx < len(e.branchers); idx++ {
		lit := e.branchers[idx].Decide(ctx)
		if lit != z.LitNull {
			e.trail.Set(CurrentBrancher, int64(idx))
			return lit, false
		}
	}
	return z.LitNull, true
}

// SettleExplanations implements Hooks.
func (e *Engine) SettleExplanations() {
	e.trail.SettleExplanations()
}

// engineSubscriber implements Subscriber for one posted propagator.
type engineSubscriber struct {
	e    *Engine
	prop PropRef
	lvl  Priority
}

func (s *engineSubscriber) WatchBounds(v IVarRef) {
	s.e.activations.Subscribe(v, s.prop, s.lvl, activateBounds)
}

func (s *engineSubscriber) WatchValue(v IVarRef) {
	s.e.activations.Subscribe(v, s.prop, s.lvl, activateValue)
}

func (s *engineSubscriber) Self() PropRef {
	return s.prop
}

func (s *engineSubscriber) WatchBool(b BView) {
	if b.kind != bViewLit {
		return
	}
	v := b.lit.Var()
	s.e.boolWatches[v] = append(s.e.boolWatches[v], activation{prop: s.prop, lvl: s.lvl})
}
