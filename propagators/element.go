package propagators

import (
	"fmt"
	"math"

	"github.com/go-air/gini/z"

	"github.com/dannem1337/huub-solver/solver"
)

// Element enforces result == vars[index], bounds-consistently, grounded
// on the reference huub implementation's IntDecisionArrayElementBounds.
// Unlike the reference, this propagator rescans every var on each call
// rather than maintaining incremental min/max-support trailed counters;
// it trades some propagation speed for a much simpler implementation,
// which this package's thinner collaborator propagators accept.
type Element struct {
	ref    solver.PropRef
	vars   []solver.IntView
	index  solver.IntView
	result solver.IntView
}

// NewElement returns a propagator enforcing result == vars[index].
func NewElement(vars []solver.IntView, index, result solver.IntView) *Element {
	return &Element{vars: vars, index: index, result: result}
}

// Name implements solver.Propagator.
func (p *Element) Name() string { return "array_int_element" }

// Priority implements solver.Propagator.
func (p *Element) Priority() solver.Priority { return solver.PriorityLow }

// Subscribe implements solver.Propagator.
func (p *Element) Subscribe(sub solver.Subscriber) {
	p.ref = sub.Self()
	for _, v := range p.vars {
		if ref, ok := v.Ref(); ok {
			sub.WatchBounds(ref)
		}
	}
	if ref, ok := p.index.Ref(); ok {
		sub.WatchValue(ref)
	}
	if ref, ok := p.result.Ref(); ok {
		sub.WatchBounds(ref)
	}
}

const (
	elemTagFixedResultLower = 0
	elemTagFixedVarLower    = 1
	elemTagFixedResultUpper = 2
	elemTagFixedVarUpper    = 3
	elemTagIdxHi            = 4
	elemTagIdxLo            = 5
	elemTagResultLower      = 6
	elemTagResultUpper      = 7
)

func packElemReason(value int64, tag int64) int64 { return value*8 + tag }

func unpackElemReason(data int64) (value int64, tag int64) {
	t := ((data % 8) + 8) % 8
	return (data - t) / 8, t
}

// Propagate implements solver.Propagator.
func (p *Element) Propagate(ctx solver.PropagationContext) bool {
	if fixed, ok := p.index.Fixed(ctx); ok {
		idx := int(fixed)
		if idx < 0 || idx >= len(p.vars) {
			return true
		}
		fv := p.vars[idx]
		if !p.result.SetLowerBound(ctx, fv.LowerBound(ctx), solver.ReasonDeferred(p.ref, packElemReason(fixed, elemTagFixedResultLower))) {
			return false
		}
		if !fv.SetLowerBound(ctx, p.result.LowerBound(ctx), solver.ReasonDeferred(p.ref, packElemReason(fixed, elemTagFixedVarLower))) {
			return false
		}
		if !p.result.SetUpperBound(ctx, fv.UpperBound(ctx), solver.ReasonDeferred(p.ref, packElemReason(fixed, elemTagFixedResultUpper))) {
			return false
		}
		if !fv.SetUpperBound(ctx, p.result.UpperBound(ctx), solver.ReasonDeferred(p.ref, packElemReason(fixed, elemTagFixedVarUpper))) {
			return false
		}
		return true
	}

	resultLB, resultUB := p.result.LowerBound(ctx), p.result.UpperBound(ctx)
	minSeen, maxSeen := int64(math.MaxInt64), int64(math.MinInt64)

	for i, v := range p.vars {
		if !p.index.InDomain(ctx, int64(i)) {
			continue
		}
		vlb, vub := v.LowerBound(ctx), v.UpperBound(ctx)

		if resultUB < vlb {
			if !p.index.ExcludeValue(ctx, int64(i), solver.ReasonDeferred(p.ref, packElemReason(int64(i), elemTagIdxHi))) {
				return false
			}
			continue
		}
		if vub < resultLB {
			if !p.index.ExcludeValue(ctx, int64(i), solver.ReasonDeferred(p.ref, packElemReason(int64(i), elemTagIdxLo))) {
				return false
			}
			continue
		}

		if vlb < minSeen {
			minSeen = vlb
		}
		if vub > maxSeen {
			maxSeen = vub
		}
	}

	if minSeen != math.MaxInt64 && minSeen > resultLB {
		if !p.result.SetLowerBound(ctx, minSeen, solver.ReasonDeferred(p.ref, packElemReason(minSeen, elemTagResultLower))) {
			return false
		}
	}
	if maxSeen != math.MinInt64 && maxSeen < resultUB {
		if !p.result.SetUpperBound(ctx, maxSeen, solver.ReasonDeferred(p.ref, packElemReason(maxSeen, elemTagResultUpper))) {
			return false
		}
	}
	return true
}

// Explain implements solver.Explainer.
func (p *Element) Explain(_ z.Lit, data int64, actions solver.ExplainActions) []z.Lit {
	value, tag := unpackElemReason(data)
	var lits []z.Lit
	add := func(lit z.Lit, ok bool) {
		if ok {
			lits = append(lits, lit)
		}
	}
	switch tag {
	case elemTagFixedResultLower:
		add(p.index.Lit(actions, solver.Eq(value)))
		add(p.vars[value].LowerBoundLit(actions))
	case elemTagFixedVarLower:
		add(p.index.Lit(actions, solver.Eq(value)))
		add(p.result.LowerBoundLit(actions))
	case elemTagFixedResultUpper:
		add(p.index.Lit(actions, solver.Eq(value)))
		add(p.vars[value].UpperBoundLit(actions))
	case elemTagFixedVarUpper:
		add(p.index.Lit(actions, solver.Eq(value)))
		add(p.result.UpperBoundLit(actions))
	case elemTagIdxHi:
		add(p.result.UpperBoundLit(actions))
		add(p.vars[value].LowerBoundLit(actions))
	case elemTagIdxLo:
		add(p.result.LowerBoundLit(actions))
		add(p.vars[value].UpperBoundLit(actions))
	case elemTagResultLower:
		for i, v := range p.vars {
			if p.index.InDomain(actions, int64(i)) {
				add(v.Lit(actions, solver.GreaterEq(value)))
			} else {
				add(p.index.Lit(actions, solver.NotEq(int64(i))))
			}
		}
	default: // elemTagResultUpper
		for i, v := range p.vars {
			if p.index.InDomain(actions, int64(i)) {
				add(v.Lit(actions, solver.Less(value+1)))
			} else {
				add(p.index.Lit(actions, solver.NotEq(int64(i))))
			}
		}
	}
	return lits
}

// CloneBox implements solver.Propagator.
func (p *Element) CloneBox() solver.Propagator {
	return &Element{vars: append([]solver.IntView(nil), p.vars...), index: p.index, result: p.result}
}

func (p *Element) String() string {
	return fmt.Sprintf("array_int_element(%v, %v, %v)", p.vars, p.index, p.result)
}
