package solver

import "github.com/go-air/gini/z"

// encodingMode selects whether an IVar's order or direct encoding is laid
// out as a contiguous eager range of oracle variables (cheap to query,
// paid for up front) or grown lazily one literal at a time (spec.md §4.1).
type encodingMode uint8

const (
	modeEager encodingMode = iota
	modeLazy
)

// orderNode is one lazily-created order-encoding literal: lit stands for
// x < value.
type orderNode struct {
	value int64
	lit   z.Lit
}

// ivarState is the per-IVar record the Engine keeps: its original domain,
// its current trailed bounds, and however much of its order/direct
// encoding has been materialized into oracle literals so far.
type ivarState struct {
	ref     IVarRef
	initial IntSet

	lb, ub TInt // trailed; current bounds, inclusive

	orderMode  encodingMode
	orderStart z.Var // eager: first of initial.Size()-1 consecutive vars
	orderLazy  []orderNode // lazy: sorted ascending by value

	directMode  encodingMode
	directStart z.Var          // eager: first of initial.Size()-2 consecutive vars
	directLazy  map[int64]z.Lit // lazy
}

// lazyCreationThreshold is the domain size above which a fresh IVar's
// order/direct encoding starts out lazy instead of eager. Below it, the
// up-front cost of a full eager range is negligible and avoids the
// per-literal bookkeeping lazy creation needs.
const lazyCreationThreshold = 256

// NewIVar creates a fresh integer variable over domain and returns its
// reference. The order encoding (and, for small domains, the direct
// encoding) is materialized eagerly; for large domains both encodings
// start lazy and grow on demand via BoolLit, per spec.md §4.1-4.2.
func (e *Engine) NewIVar(domain IntSet) IVarRef {
	ref := IVarRef(len(e.ivars))
	st := &ivarState{
		ref:     ref,
		initial: domain,
		lb:      e.trail.TrackInt(domain.LowerBound()),
		ub:      e.trail.TrackInt(domain.UpperBound()),
	}

	size := domain.Size()
	if size <= lazyCreationThreshold {
		st.orderMode = modeEager
		st.orderStart = e.allocEagerOrder(st)
	} else {
		st.orderMode = modeLazy
	}
	if size <= lazyCreationThreshold {
		st.directMode = modeEager
		st.directStart = e.allocEagerDirect(st)
	} else {
		st.directMode = modeLazy
		st.directLazy = make(map[int64]z.Lit)
	}

	e.ivars = append(e.ivars, st)
	return ref
}

// allocEagerOrder allocates and axiomatizes the full order-encoding range
// for an IVar with n-1 interior values (one literal per non-minimum
// value, lit_i meaning x < value_i), teaching the chain clause
// ¬lit_i ∨ lit_{i+1} (x < v_i implies x < v_{i+1} for v_i < v_{i+1}) so the
// oracle enforces monotonicity without engine help.
func (e *Engine) allocEagerOrder(st *ivarState) z.Var {
	n := int(st.initial.Size()) - 1
	if n <= 0 {
		return noVar
	}
	first := e.oracle.NewVarRange(n)
	for i := 0; i < n-1; i++ {
		lo := first.Var() + z.Var(i)
		hi := first.Var() + z.Var(i+1)
		e.oracle.AddClause(posLit(lo).Not(), posLit(hi))
	}
	e.boolIntMap.InsertEager(first.Var(), n, st.ref, false)
	return first.Var()
}

// allocEagerDirect allocates and axiomatizes the full direct-encoding
// range for an IVar with n-2 interior values, linking each equality
// literal to the two order literals that bracket it: e = (x=v) is
// equivalent to (x < v+1) ∧ ¬(x < v).
func (e *Engine) allocEagerDirect(st *ivarState) z.Var {
	n := int(st.initial.Size()) - 2
	if n <= 0 {
		return noVar
	}
	first := e.oracle.NewVarRange(n)
	interior := eagerInteriorValues(st.initial)
	for i, v := range interior {
		eq := posLit(z.Var(int(first.Var()) + i))
		lowLit, hasLow := e.orderLitFor(st, v)     // x < v
		highLit, hasHigh := e.orderLitFor(st, v+1) // x < v+1
		if hasLow {
			e.oracle.AddClause(eq.Not(), lowLit.Not())
		}
		if hasHigh {
			e.oracle.AddClause(eq.Not(), highLit)
		}
		if hasLow && hasHigh {
			e.oracle.AddClause(eq, lowLit, highLit.Not())
		}
	}
	e.boolIntMap.InsertEager(first.Var(), n, st.ref, true)
	return first.Var()
}

// eagerInteriorValues returns the domain's non-minimum, non-maximum
// values in ascending order: the direct encoding never needs a literal for
// the extreme values (those are represented purely via the order
// encoding).
func eagerInteriorValues(s IntSet) []int64 {
	var vs []int64
	lo, hi := s.LowerBound(), s.UpperBound()
	for _, r := range s.Ranges() {
		for v := r.Lo; v <= r.Hi; v++ {
			if v != lo && v != hi {
				vs = append(vs, v)
			}
		}
	}
	return vs
}

// orderLitFor returns the order literal meaning x < value for an already
// materialized order range, if value is within the eagerly-covered
// interior. ok is false for value == the domain's lower bound (which has
// no order literal: x < lb is always false) or for a value outside the
// eager range (lazy mode, or an out-of-domain probe).
func (e *Engine) orderLitFor(st *ivarState, value int64) (z.Lit, bool) {
	if st.orderMode != modeEager {
		return z.LitNull, false
	}
	offset, ok := st.initial.OffsetOf(value)
	if !ok {
		return z.LitNull, false
	}
	return posLit(z.Var(int(st.orderStart) + int(offset))), true
}

// GetBounds returns the current lower and upper bound of ref.
func (e *Engine) GetBounds(ref IVarRef) (int64, int64) {
	st := e.ivars[ref]
	return e.trail.Get(st.lb), e.trail.Get(st.ub)
}

// LowerBound implements ExplainActions and PropagationContext.
func (e *Engine) LowerBound(ref IVarRef) int64 {
	lb, _ := e.GetBounds(ref)
	return lb
}

// UpperBound implements ExplainActions and PropagationContext.
func (e *Engine) UpperBound(ref IVarRef) int64 {
	_, ub := e.GetBounds(ref)
	return ub
}

// Lit implements ExplainActions: it returns the literal for m on ref,
// creating it if necessary.
func (e *Engine) Lit(ref IVarRef, m LitMeaning) z.Lit {
	return e.BoolLit(ref, m)
}

// InDomain implements ExplainActions, delegating to CheckInDomain: the
// trail has already been repositioned by the caller (Engine.expand) to
// the historical point being explained.
func (e *Engine) InDomain(ref IVarRef, val int64) bool {
	return e.CheckInDomain(ref, val)
}

// BoolValue implements ExplainActions and boundReader, reading b's value
// off the trail at whatever position the caller has positioned it to.
func (e *Engine) BoolValue(b BView) (bool, bool) {
	switch b.kind {
	case bViewConst:
		return b.cst, true
	case bViewUnresolved:
		return e.trail.GetSatValue(e.BoolLit(b.ivar, b.meaning))
	default:
		return e.trail.GetSatValue(b.lit)
	}
}

// CheckInDomain reports whether val lies within ref's current bounds and
// has not been excluded by an assigned direct-encoding literal.
func (e *Engine) CheckInDomain(ref IVarRef, val int64) bool {
	st := e.ivars[ref]
	lb, ub := e.GetBounds(ref)
	if val < lb || val > ub {
		return false
	}
	if !st.initial.Contains(val) {
		return false
	}
	if lit, ok := e.existingDirectLit(st, val); ok {
		if v, assigned := e.trail.GetSatValue(lit); assigned && !v {
			return false
		}
	}
	return true
}

// BoolLit returns the literal meaning m on ref, creating it (and, for an
// interior Eq/NotEq request that falls between two not-yet-materialized
// order literals, its bracketing order literals) if it does not exist
// yet. This is the normalize/clamp/lookup-or-create algorithm of
// spec.md §4.2.
func (e *Engine) BoolLit(ref IVarRef, m LitMeaning) z.Lit {
	st := e.ivars[ref]
	lo, hi := st.initial.LowerBound(), st.initial.UpperBound()

	switch m.Kind {
	case LitGreaterEq:
		lit := e.boolLitLess(st, m.Val)
		return lit.Not()
	case LitLess:
		return e.boolLitLess(st, m.Val)
	case LitEq:
		return e.boolLitEq(st, m.Val, lo, hi)
	default: // LitNotEq
		return e.boolLitEq(st, m.Val, lo, hi).Not()
	}
}

// boolLitLess returns the literal for x < v, clamping to a trivial
// constant when v is outside the domain's interior range.
func (e *Engine) boolLitLess(st *ivarState, v int64) z.Lit {
	lo, hi := st.initial.LowerBound(), st.initial.UpperBound()
	if v <= lo {
		return e.litFalse()
	}
	if v > hi {
		return e.litTrue
	}
	if st.orderMode == modeEager {
		lit, _ := e.orderLitFor(st, v)
		return lit
	}
	return e.lazyOrderLit(st, v)
}

// lazyOrderLit finds or creates, in the lazily-grown order chain, the
// literal meaning x < v, teaching whatever monotonicity clauses are
// needed against its immediate neighbors in the chain.
func (e *Engine) lazyOrderLit(st *ivarState, v int64) z.Lit {
	i := 0
	for i < len(st.orderLazy) && st.orderLazy[i].value < v {
		i++
	}
	if i < len(st.orderLazy) && st.orderLazy[i].value == v {
		return st.orderLazy[i].lit
	}
	lit := e.oracle.NewVar()
	if i > 0 {
		// order[i-1] < order[i], i.e. x < prev ⇒ x < v
		e.oracle.AddClause(st.orderLazy[i-1].lit.Not(), lit)
	}
	if i < len(st.orderLazy) {
		// x < v ⇒ x < next
		e.oracle.AddClause(lit.Not(), st.orderLazy[i].lit)
	}
	node := orderNode{value: v, lit: lit}
	st.orderLazy = append(st.orderLazy, orderNode{})
	copy(st.orderLazy[i+1:], st.orderLazy[i:])
	st.orderLazy[i] = node
	e.boolIntMap.InsertLazy(lit.Var(), st.ref, Less(v))
	return lit
}

// boolLitEq returns the literal for x = v, clamping to a trivial constant
// when v lies outside the domain entirely, and otherwise bracketing it
// with the order literals for v and v+1 (creating them if necessary) the
// same way the eager direct encoding does.
func (e *Engine) boolLitEq(st *ivarState, v, lo, hi int64) z.Lit {
	if !st.initial.Contains(v) {
		return e.litFalse()
	}
	if lit, ok := e.existingDirectLit(st, v); ok {
		return lit
	}
	if v == lo {
		// x = lo  ⇔  x < lo+1 (x >= lo always holds, by domain construction)
		return e.boolLitLess(st, lo+1)
	}
	if v == hi {
		// x = hi  ⇔  x < hi is false and nothing above: x = hi ⇔ ¬(x < hi)
		return e.boolLitLess(st, hi).Not()
	}
	eq := e.oracle.NewVar()
	low := e.boolLitLess(st, v)
	high := e.boolLitLess(st, v+1)
	e.oracle.AddClause(eq.Not(), low.Not())
	e.oracle.AddClause(eq.Not(), high)
	e.oracle.AddClause(eq, low, high.Not())
	if st.directMode == modeLazy {
		st.directLazy[v] = eq
	}
	e.boolIntMap.InsertLazy(eq.Var(), st.ref, Eq(v))
	return eq
}

// existingDirectLit returns the already-materialized direct-encoding
// literal for value, if one exists, without creating it.
func (e *Engine) existingDirectLit(st *ivarState, value int64) (z.Lit, bool) {
	if st.directMode == modeEager {
		offset, ok := st.initial.OffsetOf(value)
		lo := st.initial.LowerBound()
		hi := st.initial.UpperBound()
		if !ok || value == lo || value == hi {
			return z.LitNull, false
		}
		// OffsetOf is 0-based among interior values, matching the layout
		// allocEagerDirect used: directStart+i → interior[i].
		return posLit(z.Var(int(st.directStart) + int(offset))), true
	}
	lit, ok := st.directLazy[value]
	return lit, ok
}

// LitMeaningOf returns the LitMeaning a literal represents, if it belongs
// to any IVar.
func (e *Engine) LitMeaningOf(lit z.Lit) (IVarRef, LitMeaning, bool) {
	ref, ok := e.boolIntMap.IVarOf(lit)
	if !ok {
		return 0, LitMeaning{}, false
	}
	m, ok := e.boolIntMap.MeaningOf(lit, e.ivars[ref].initial)
	return ref, m, ok
}

// onLitAssigned updates ref's trailed bounds to reflect the newly assigned
// literal lit and notifies whichever propagators subscribed to the event,
// per spec.md §4.4's notify_lower_bound/notify_upper_bound hooks.
func (e *Engine) onLitAssigned(ref IVarRef, lit z.Lit) {
	st := e.ivars[ref]
	m, ok := e.boolIntMap.MeaningOf(lit, st.initial)
	if !ok {
		return
	}
	switch m.Kind {
	case LitGreaterEq:
		if cur := e.trail.Get(st.lb); m.Val > cur {
			e.trail.Set(st.lb, m.Val)
			e.activations.Notify(e.queue, ref, activateBounds)
		}
	case LitLess:
		if ub := m.Val - 1; ub < e.trail.Get(st.ub) {
			e.trail.Set(st.ub, ub)
			e.activations.Notify(e.queue, ref, activateBounds)
		}
	case LitEq:
		lb, ub := e.trail.Get(st.lb), e.trail.Get(st.ub)
		if m.Val != lb {
			e.trail.Set(st.lb, m.Val)
		}
		if m.Val != ub {
			e.trail.Set(st.ub, m.Val)
		}
		e.activations.Notify(e.queue, ref, activateBounds)
	case LitNotEq:
		e.activations.Notify(e.queue, ref, activateValue)
	}
}
