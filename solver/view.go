package solver

import (
	"github.com/go-air/gini/z"
)

// IVarRef is a dense index identifying an integer variable owned by an
// Engine. It, and BoolIntMap below, are how the engine avoids back-pointers
// between Boolean and integer state: both sides hold indices into owning
// slices rather than references to one another (spec.md §9's
// cyclic-structure note).
type IVarRef uint32

// LinearTransform is a scale/offset pair (scale·x + offset) applied to an
// underlying integer entity by a view. The scale is never zero.
type LinearTransform struct {
	Scale  int64
	Offset int64
}

// Identity is the no-op linear transform.
var Identity = LinearTransform{Scale: 1, Offset: 0}

// Apply maps an underlying value through the transform.
func (t LinearTransform) Apply(v int64) int64 {
	return t.Scale*v + t.Offset
}

// Compose returns the transform equivalent to applying t and then outer,
// i.e. outer(t(x)).
func (t LinearTransform) Compose(outer LinearTransform) LinearTransform {
	return LinearTransform{
		Scale:  outer.Scale * t.Scale,
		Offset: outer.Scale*t.Offset + outer.Offset,
	}
}

// TransformLit maps a LitMeaning about the underlying entity to the
// equivalent LitMeaning about transform(entity). See SPEC_FULL.md §4.8.
func (t LinearTransform) TransformLit(m LitMeaning) LitMeaning {
	a, b := t.Scale, t.Offset
	switch m.Kind {
	case LitEq:
		return Eq(a*m.Val + b)
	case LitNotEq:
		return NotEq(a*m.Val + b)
	case LitGreaterEq:
		if a > 0 {
			return GreaterEq(a*m.Val + b)
		}
		return Less(a*m.Val + b + 1)
	default: // LitLess
		if a > 0 {
			return Less(a*m.Val + b)
		}
		return GreaterEq(a*m.Val + b + 1)
	}
}

// revConst reports that a reverse-transformed literal collapsed to a
// constant, per spec.md §4.8: an Eq that does not land on the scaled
// lattice collapses to constant-false; the dual NotEq collapses to true.
type revConst struct {
	isConst bool
	value   bool
}

// RevTransformLit is the inverse of TransformLit: it maps a LitMeaning
// about transform(entity) back to a LitMeaning about the underlying entity,
// using ceiling/floor division for GreaterEq/Less and signalling a constant
// collapse for an Eq/NotEq that does not lie on the scaled lattice.
func (t LinearTransform) RevTransformLit(m LitMeaning) (LitMeaning, revConst) {
	switch m.Kind {
	case LitGreaterEq:
		return t.revGreaterEq(m.Val)
	case LitLess:
		lm, c := t.revGreaterEq(m.Val)
		if c.isConst {
			return LitMeaning{}, revConst{isConst: true, value: !c.value}
		}
		return lm.Negate(), revConst{}
	case LitEq:
		return t.revEq(m.Val)
	default: // LitNotEq
		lm, c := t.revEq(m.Val)
		if c.isConst {
			return LitMeaning{}, revConst{isConst: true, value: !c.value}
		}
		return lm.Negate(), revConst{}
	}
}

func (t LinearTransform) revGreaterEq(i int64) (LitMeaning, revConst) {
	a, b := t.Scale, t.Offset
	num := i - b
	if a > 0 {
		return GreaterEq(ceilDiv(num, a)), revConst{}
	}
	return Less(floorDiv(num, a) + 1), revConst{}
}

func (t LinearTransform) revEq(i int64) (LitMeaning, revConst) {
	a, b := t.Scale, t.Offset
	num := i - b
	if num%a != 0 {
		return LitMeaning{}, revConst{isConst: true, value: false}
	}
	return Eq(num / a), revConst{}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

// intViewKind enumerates the shapes an IntView can take (spec.md §3).
type intViewKind uint8

const (
	intViewRef   intViewKind = iota // reference to an IVar
	intViewConst                    // constant
	intViewLinIVar                  // a·IVar + b
	intViewLinLit                   // a·Lit + b, Lit treated as 0/1
)

// IntView is a transform-only handle onto an IVar, a constant, or a
// Boolean literal treated as 0/1. Views own no storage.
type IntView struct {
	kind  intViewKind
	ivar  IVarRef
	lit   z.Lit
	cst   int64
	trans LinearTransform
}

// IntVarView returns a plain view of ref.
func IntVarView(ref IVarRef) IntView {
	return IntView{kind: intViewRef, ivar: ref, trans: Identity}
}

// ConstIntView returns a view that always reads as v.
func ConstIntView(v int64) IntView {
	return IntView{kind: intViewConst, cst: v}
}

// BoolAsIntView returns a view of lit treated as the integer 0 or 1.
func BoolAsIntView(lit z.Lit) IntView {
	return IntView{kind: intViewLinLit, lit: lit, trans: Identity}
}

// Scale returns a·v + b applied on top of v, folding constants and
// composing transforms over existing views rather than allocating storage.
func (v IntView) Scale(a, b int64) IntView {
	t := LinearTransform{Scale: a, Offset: b}
	switch v.kind {
	case intViewConst:
		return ConstIntView(t.Apply(v.cst))
	case intViewRef:
		return IntView{kind: intViewLinIVar, ivar: v.ivar, trans: t}
	case intViewLinIVar:
		return IntView{kind: intViewLinIVar, ivar: v.ivar, trans: v.trans.Compose(t)}
	default: // intViewLinLit
		return IntView{kind: intViewLinLit, lit: v.lit, trans: v.trans.Compose(t)}
	}
}

// IsConst reports whether the view is a compile-time-known constant,
// returning its value if so.
func (v IntView) IsConst() (int64, bool) {
	if v.kind == intViewConst {
		return v.cst, true
	}
	return 0, false
}

// Ref returns the underlying IVar, if the view wraps one (directly or
// through a linear transform).
func (v IntView) Ref() (IVarRef, bool) {
	switch v.kind {
	case intViewRef, intViewLinIVar:
		return v.ivar, true
	default:
		return 0, false
	}
}

// boundReader is the subset of PropagationContext IntView needs to read
// bounds; satisfied by PropagationContext itself.
type boundReader interface {
	LowerBound(v IVarRef) int64
	UpperBound(v IVarRef) int64
	BoolValue(b BView) (bool, bool)
}

// LowerBound returns the view's current lower bound.
func (v IntView) LowerBound(ctx boundReader) int64 {
	switch v.kind {
	case intViewConst:
		return v.cst
	case intViewLinLit:
		val, assigned := ctx.BoolValue(LitBView(v.lit))
		if !assigned {
			val = v.trans.Scale < 0 // unassigned: whichever of 0/1 maps lower
		}
		return v.trans.Apply(boolAsInt(v.lit, val))
	default: // intViewRef, intViewLinIVar
		if v.trans.Scale > 0 {
			return v.trans.Apply(ctx.LowerBound(v.ivar))
		}
		return v.trans.Apply(ctx.UpperBound(v.ivar))
	}
}

// UpperBound returns the view's current upper bound.
func (v IntView) UpperBound(ctx boundReader) int64 {
	switch v.kind {
	case intViewConst:
		return v.cst
	case intViewLinLit:
		val, assigned := ctx.BoolValue(LitBView(v.lit))
		if !assigned {
			val = v.trans.Scale > 0 // unassigned: whichever of 0/1 maps higher
		}
		return v.trans.Apply(boolAsInt(v.lit, val))
	default:
		if v.trans.Scale > 0 {
			return v.trans.Apply(ctx.UpperBound(v.ivar))
		}
		return v.trans.Apply(ctx.LowerBound(v.ivar))
	}
}

// boolAsInt reports the 0/1 value a literal treated as an integer takes
// when assigned val. For unassigned bools, LowerBound and UpperBound pick
// whichever of 0 and 1 the view's scale maps lower and higher respectively,
// bracketing both possibilities.
func boolAsInt(_ z.Lit, val bool) int64 {
	if val {
		return 1
	}
	return 0
}

// boundSetter is the subset of PropagationContext IntView needs to
// tighten bounds.
type boundSetter interface {
	SetLowerBound(v IVarRef, val int64, reason Reason) bool
	SetUpperBound(v IVarRef, val int64, reason Reason) bool
	SetBool(b BView, reason Reason) bool
}

// SetUpperBound tightens the view's upper bound to at most val, translating
// through the view's linear transform onto the underlying entity.
func (v IntView) SetUpperBound(ctx boundSetter, val int64, reason Reason) bool {
	switch v.kind {
	case intViewConst:
		return v.cst <= val
	case intViewLinLit:
		if v.trans.Scale > 0 {
			if val >= v.trans.Apply(1) {
				return true
			}
			return ctx.SetBool(LitBView(v.lit.Not()), reason)
		}
		if val >= v.trans.Apply(0) {
			return true
		}
		return ctx.SetBool(LitBView(v.lit), reason)
	default:
		underlying := floorDivTowards(val-v.trans.Offset, v.trans.Scale, v.trans.Scale > 0)
		if v.trans.Scale > 0 {
			return ctx.SetUpperBound(v.ivar, underlying, reason)
		}
		return ctx.SetLowerBound(v.ivar, underlying, reason)
	}
}

// SetLowerBound tightens the view's lower bound to at least val.
func (v IntView) SetLowerBound(ctx boundSetter, val int64, reason Reason) bool {
	switch v.kind {
	case intViewConst:
		return v.cst >= val
	case intViewLinLit:
		if v.trans.Scale > 0 {
			if val <= v.trans.Apply(0) {
				return true
			}
			return ctx.SetBool(LitBView(v.lit), reason)
		}
		if val <= v.trans.Apply(1) {
			return true
		}
		return ctx.SetBool(LitBView(v.lit.Not()), reason)
	default:
		underlying := floorDivTowards(val-v.trans.Offset, v.trans.Scale, v.trans.Scale < 0)
		if v.trans.Scale > 0 {
			return ctx.SetLowerBound(v.ivar, underlying, reason)
		}
		return ctx.SetUpperBound(v.ivar, underlying, reason)
	}
}

// inDomainChecker is the subset of PropagationContext IntView needs to
// test domain membership.
type inDomainChecker interface {
	InDomain(v IVarRef, val int64) bool
}

// InDomain reports whether val lies in the view's domain, translating
// through the view's linear transform onto the underlying entity.
func (v IntView) InDomain(ctx inDomainChecker, val int64) bool {
	switch v.kind {
	case intViewConst:
		return v.cst == val
	case intViewLinLit:
		return val == v.trans.Apply(0) || val == v.trans.Apply(1)
	default:
		num := val - v.trans.Offset
		if num%v.trans.Scale != 0 {
			return false
		}
		return ctx.InDomain(v.ivar, num/v.trans.Scale)
	}
}

// boundExcluder is the subset of PropagationContext IntView needs to
// exclude a single value from its domain.
type boundExcluder interface {
	ExcludeValue(v IVarRef, val int64, reason Reason) bool
	SetBool(b BView, reason Reason) bool
}

// ExcludeValue removes val from the view's domain, translating through the
// view's linear transform onto the underlying entity. A val that does not
// lie on the transform's lattice is already absent from the view's domain,
// so excluding it is a no-op.
func (v IntView) ExcludeValue(ctx boundExcluder, val int64, reason Reason) bool {
	switch v.kind {
	case intViewConst:
		return v.cst != val
	case intViewLinLit:
		switch val {
		case v.trans.Apply(0):
			return ctx.SetBool(LitBView(v.lit), reason)
		case v.trans.Apply(1):
			return ctx.SetBool(LitBView(v.lit.Not()), reason)
		default:
			return true
		}
	default:
		num := val - v.trans.Offset
		if num%v.trans.Scale != 0 {
			return true
		}
		return ctx.ExcludeValue(v.ivar, num/v.trans.Scale, reason)
	}
}

// Fixed reports whether the view's bounds have collapsed to a single
// value, and that value if so.
func (v IntView) Fixed(ctx boundReader) (int64, bool) {
	lb, ub := v.LowerBound(ctx), v.UpperBound(ctx)
	if lb == ub {
		return lb, true
	}
	return 0, false
}

// LowerBoundLit returns the literal meaning "this view is at least its
// current lower bound", translated onto the underlying entity, for use as
// a reason antecedent. ok is false for a constant view, which needs no
// antecedent.
func (v IntView) LowerBoundLit(actions ExplainActions) (z.Lit, bool) {
	switch v.kind {
	case intViewConst:
		return z.LitNull, false
	case intViewLinLit:
		// Mirror LowerBound's own reading of the bool: cite whichever side is
		// actually assigned. Unassigned means the lower bound sits at its
		// pessimistic default, which holds unconditionally and needs no
		// antecedent.
		val, assigned := actions.BoolValue(LitBView(v.lit))
		if !assigned {
			return z.LitNull, false
		}
		if val {
			return v.lit, true
		}
		return v.lit.Not(), true
	default:
		if v.trans.Scale > 0 {
			lb := actions.LowerBound(v.ivar)
			return actions.Lit(v.ivar, GreaterEq(lb)), true
		}
		ub := actions.UpperBound(v.ivar)
		return actions.Lit(v.ivar, Less(ub+1)), true
	}
}

// UpperBoundLit returns the literal meaning "this view is at most its
// current upper bound", translated onto the underlying entity, for use as
// a reason antecedent. ok is false for a constant view.
func (v IntView) UpperBoundLit(actions ExplainActions) (z.Lit, bool) {
	switch v.kind {
	case intViewConst:
		return z.LitNull, false
	case intViewLinLit:
		// Same reasoning as LowerBoundLit: cite the assigned side, or no
		// antecedent when the upper bound still sits at its optimistic
		// unassigned default.
		val, assigned := actions.BoolValue(LitBView(v.lit))
		if !assigned {
			return z.LitNull, false
		}
		if val {
			return v.lit, true
		}
		return v.lit.Not(), true
	default:
		if v.trans.Scale > 0 {
			ub := actions.UpperBound(v.ivar)
			return actions.Lit(v.ivar, Less(ub+1)), true
		}
		lb := actions.LowerBound(v.ivar)
		return actions.Lit(v.ivar, GreaterEq(lb)), true
	}
}

// Lit returns the literal for an arbitrary LitMeaning m about the view,
// translated onto the underlying entity, for use as a reason antecedent
// when the meaning is not simply the view's current bound. ok is false
// when no antecedent is needed (a constant view, or a meaning that
// already holds unconditionally for a Boolean-as-int view).
func (v IntView) Lit(actions ExplainActions, m LitMeaning) (z.Lit, bool) {
	switch v.kind {
	case intViewConst:
		return z.LitNull, false
	case intViewLinLit:
		holds0, holds1 := m.Holds(v.trans.Apply(0)), m.Holds(v.trans.Apply(1))
		switch {
		case holds0 && holds1:
			return z.LitNull, false
		case holds1:
			return v.lit, true
		default:
			return v.lit.Not(), true
		}
	default:
		underlying, c := v.trans.RevTransformLit(m)
		if c.isConst {
			if c.value {
				return z.LitNull, false
			}
			return v.lit, true // unreachable in practice: meaning is unsatisfiable
		}
		return actions.Lit(v.ivar, underlying), true
	}
}

// Lit returns the literal b currently stands for, if it has one (a
// constant BView has none).
func (b BView) Lit() (z.Lit, bool) {
	switch b.kind {
	case bViewLit:
		return b.lit, true
	default:
		return z.LitNull, false
	}
}

// floorDivTowards divides num by denom, rounding towards +infinity when
// roundUp is true and towards -infinity otherwise; used to translate a
// bound on a·x+b back onto x without ever over-tightening.
func floorDivTowards(num, denom int64, roundUp bool) int64 {
	if roundUp {
		return ceilDiv(num, denom)
	}
	return floorDiv(num, denom)
}

// bViewKind enumerates the shapes a BView can take (spec.md §3).
type bViewKind uint8

const (
	bViewLit        bViewKind = iota // a resolved oracle literal
	bViewConst                       // a constant true/false
	bViewUnresolved                  // a yet-unrealized integer condition
)

// BView is a Boolean view: a resolved oracle literal, a constant, or a
// typed wrapper for an integer condition that has not yet been given a
// literal. Resolving the wrapper (through Engine.BoolLit, when the view is
// first read or set) is the lazy literal
// creation path described in spec.md §4.2.
type BView struct {
	kind    bViewKind
	lit     z.Lit
	cst     bool
	ivar    IVarRef
	meaning LitMeaning
}

// LitBView wraps an already-resolved oracle literal.
func LitBView(lit z.Lit) BView {
	return BView{kind: bViewLit, lit: lit}
}

// ConstBView returns a constant Boolean view.
func ConstBView(v bool) BView {
	return BView{kind: bViewConst, cst: v}
}

// UnresolvedBView returns a BView that stands for meaning on ivar without
// forcing literal creation; it is resolved on first use.
func UnresolvedBView(ivar IVarRef, meaning LitMeaning) BView {
	return BView{kind: bViewUnresolved, ivar: ivar, meaning: meaning}
}

// Not returns the logical negation of the view.
func (b BView) Not() BView {
	switch b.kind {
	case bViewLit:
		return BView{kind: bViewLit, lit: b.lit.Not()}
	case bViewConst:
		return BView{kind: bViewConst, cst: !b.cst}
	default:
		return BView{kind: bViewUnresolved, ivar: b.ivar, meaning: b.meaning.Negate()}
	}
}

// IsConst reports whether the view is a compile-time-known constant.
func (b BView) IsConst() (bool, bool) {
	if b.kind == bViewConst {
		return b.cst, true
	}
	return false, false
}
