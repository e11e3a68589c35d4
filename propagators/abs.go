package propagators

import (
	"fmt"

	"github.com/go-air/gini/z"

	"github.com/dannem1337/huub-solver/solver"
)

// Abs enforces abs == |origin|, bounds-consistently, mirroring the
// reference huub implementation's IntAbsBounds: origin's sign narrows
// abs's bounds, and abs's upper bound in turn clamps origin's range to
// [-ub, ub].
type Abs struct {
	ref    solver.PropRef
	origin solver.IntView
	abs    solver.IntView
}

// NewAbs returns a propagator enforcing abs == |origin|.
func NewAbs(origin, abs solver.IntView) *Abs {
	return &Abs{origin: origin, abs: abs}
}

// Name implements solver.Propagator.
func (p *Abs) Name() string { return "int_abs" }

// Priority implements solver.Propagator.
func (p *Abs) Priority() solver.Priority { return solver.PriorityHighest }

// Subscribe implements solver.Propagator.
func (p *Abs) Subscribe(sub solver.Subscriber) {
	p.ref = sub.Self()
	if ref, ok := p.origin.Ref(); ok {
		sub.WatchBounds(ref)
	}
	if ref, ok := p.abs.Ref(); ok {
		sub.WatchBounds(ref)
	}
}

// absReasonTag distinguishes which of Abs's seven propagation rules produced
// a given deferred reason, packed together with the bound value into a
// single int64 (value*8 + tag, recoverable since tag is always in [0,8)).
type absReasonTag int64

const (
	absTagNegUpper absReasonTag = iota // abs upper bound, origin known negative
	absTagNegLower                     // abs lower bound, origin known negative
	absTagPosLower                     // abs lower bound, origin known non-negative
	absTagPosUpper                     // abs upper bound, origin known non-negative
	absTagMixed                        // abs upper bound, origin's sign unknown
	absTagOriginLower                  // origin lower bound, from abs's upper bound
	absTagOriginUpper                  // origin upper bound, from abs's upper bound
)

func packAbsReason(value int64, tag absReasonTag) int64 {
	return value*8 + int64(tag)
}

func unpackAbsReason(data int64) (value int64, tag absReasonTag) {
	t := ((data % 8) + 8) % 8
	return (data - t) / 8, absReasonTag(t)
}

// Propagate implements solver.Propagator.
func (p *Abs) Propagate(ctx solver.PropagationContext) bool {
	lb, ub := p.origin.LowerBound(ctx), p.origin.UpperBound(ctx)

	switch {
	case ub < 0:
		if !p.abs.SetUpperBound(ctx, -lb, solver.ReasonDeferred(p.ref, packAbsReason(-lb, absTagNegUpper))) {
			return false
		}
		if !p.abs.SetLowerBound(ctx, -ub, solver.ReasonDeferred(p.ref, packAbsReason(-ub, absTagNegLower))) {
			return false
		}
	case lb >= 0:
		if !p.abs.SetLowerBound(ctx, lb, solver.ReasonDeferred(p.ref, packAbsReason(lb, absTagPosLower))) {
			return false
		}
		if !p.abs.SetUpperBound(ctx, ub, solver.ReasonDeferred(p.ref, packAbsReason(ub, absTagPosUpper))) {
			return false
		}
	default:
		absMax := ub
		if -lb > absMax {
			absMax = -lb
		}
		if !p.abs.SetUpperBound(ctx, absMax, solver.ReasonDeferred(p.ref, packAbsReason(absMax, absTagMixed))) {
			return false
		}
	}

	newUB := p.abs.UpperBound(ctx)
	if !p.origin.SetLowerBound(ctx, -newUB, solver.ReasonDeferred(p.ref, packAbsReason(newUB, absTagOriginLower))) {
		return false
	}
	if !p.origin.SetUpperBound(ctx, newUB, solver.ReasonDeferred(p.ref, packAbsReason(newUB, absTagOriginUpper))) {
		return false
	}
	return true
}

// Explain implements solver.Explainer.
func (p *Abs) Explain(_ z.Lit, data int64, actions solver.ExplainActions) []z.Lit {
	value, tag := unpackAbsReason(data)
	var lits []z.Lit
	add := func(lit z.Lit, ok bool) {
		if ok {
			lits = append(lits, lit)
		}
	}
	switch tag {
	case absTagNegUpper:
		add(p.origin.LowerBoundLit(actions))
		add(p.origin.Lit(actions, solver.Less(0)))
	case absTagNegLower:
		add(p.origin.UpperBoundLit(actions))
	case absTagPosLower:
		add(p.origin.LowerBoundLit(actions))
	case absTagPosUpper:
		add(p.origin.UpperBoundLit(actions))
		add(p.origin.Lit(actions, solver.GreaterEq(0)))
	case absTagMixed:
		add(p.origin.Lit(actions, solver.GreaterEq(-value)))
		add(p.origin.Lit(actions, solver.Less(value+1)))
	default: // absTagOriginLower, absTagOriginUpper
		add(p.abs.UpperBoundLit(actions))
	}
	return lits
}

// CloneBox implements solver.Propagator.
func (p *Abs) CloneBox() solver.Propagator {
	return &Abs{origin: p.origin, abs: p.abs}
}

func (p *Abs) String() string {
	return fmt.Sprintf("int_abs(%v, %v)", p.origin, p.abs)
}
