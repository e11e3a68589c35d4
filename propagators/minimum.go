package propagators

import (
	"fmt"

	"github.com/go-air/gini/z"

	"github.com/dannem1337/huub-solver/solver"
)

// Minimum enforces min == minimum(vars), bounds-consistently, mirroring
// the reference huub implementation's IntArrayMinimumBounds: min's upper
// bound tracks the tightest upper bound among vars, min's lower bound
// tracks the smallest lower bound among vars (the minimum can never fall
// below every var's own floor), and every var's lower bound is in turn
// clamped up to min's.
type Minimum struct {
	ref  solver.PropRef
	vars []solver.IntView
	min  solver.IntView
}

// NewMinimum returns a propagator enforcing min == minimum(vars). vars
// must be non-empty.
func NewMinimum(vars []solver.IntView, min solver.IntView) *Minimum {
	return &Minimum{vars: vars, min: min}
}

// Name implements solver.Propagator.
func (p *Minimum) Name() string { return "array_int_minimum" }

// Priority implements solver.Propagator.
func (p *Minimum) Priority() solver.Priority { return solver.PriorityLow }

// Subscribe implements solver.Propagator.
func (p *Minimum) Subscribe(sub solver.Subscriber) {
	p.ref = sub.Self()
	for _, v := range p.vars {
		if ref, ok := v.Ref(); ok {
			sub.WatchBounds(ref)
		}
	}
	if ref, ok := p.min.Ref(); ok {
		sub.WatchBounds(ref)
	}
}

const (
	minTagUpper = 0
	minTagLower = 1
	minTagVar   = 2
)

// Propagate implements solver.Propagator.
func (p *Minimum) Propagate(ctx solver.PropagationContext) bool {
	minUB, minUBIdx := int64(1)<<62, 0
	minLB := int64(1) << 62
	for i, v := range p.vars {
		if ub := v.UpperBound(ctx); ub < minUB {
			minUB, minUBIdx = ub, i
		}
		if lb := v.LowerBound(ctx); lb < minLB {
			minLB = lb
		}
	}

	if !p.min.SetUpperBound(ctx, minUB, solver.ReasonDeferred(p.ref, packMinReason(int64(minUBIdx), minTagUpper))) {
		return false
	}
	if !p.min.SetLowerBound(ctx, minLB, solver.ReasonDeferred(p.ref, packMinReason(minLB, minTagLower))) {
		return false
	}

	newLB := p.min.LowerBound(ctx)
	for _, v := range p.vars {
		if !v.SetLowerBound(ctx, newLB, solver.ReasonDeferred(p.ref, packMinReason(0, minTagVar))) {
			return false
		}
	}
	return true
}

func packMinReason(value int64, tag int64) int64 { return value*4 + tag }

func unpackMinReason(data int64) (value int64, tag int64) {
	t := ((data % 4) + 4) % 4
	return (data - t) / 4, t
}

// Explain implements solver.Explainer.
func (p *Minimum) Explain(_ z.Lit, data int64, actions solver.ExplainActions) []z.Lit {
	value, tag := unpackMinReason(data)
	switch tag {
	case minTagUpper:
		if lit, ok := p.vars[value].UpperBoundLit(actions); ok {
			return []z.Lit{lit}
		}
		return nil
	case minTagLower:
		lits := make([]z.Lit, 0, len(p.vars))
		for _, v := range p.vars {
			if lit, ok := v.Lit(actions, solver.GreaterEq(value)); ok {
				lits = append(lits, lit)
			}
		}
		return lits
	default: // minTagVar
		if lit, ok := p.min.LowerBoundLit(actions); ok {
			return []z.Lit{lit}
		}
		return nil
	}
}

// CloneBox implements solver.Propagator.
func (p *Minimum) CloneBox() solver.Propagator {
	return &Minimum{vars: append([]solver.IntView(nil), p.vars...), min: p.min}
}

func (p *Minimum) String() string {
	return fmt.Sprintf("array_int_minimum(%v, %v)", p.vars, p.min)
}
