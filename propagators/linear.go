// Package propagators provides Propagator implementations for common
// arithmetic constraints, for use with solver.Engine.
package propagators

import (
	"fmt"

	"github.com/go-air/gini/z"

	"github.com/dannem1337/huub-solver/solver"
)

// LinearLE enforces sum(vars) <= max, bounds-consistently: on every run,
// each variable's upper bound is tightened to the slack the other
// variables' current lower bounds leave it, mirroring the
// propagation rule of the reference huub implementation's int_lin_le (x[i]
// <= rhs - sum_{j!=i} lb(x[j])). If reif is non-nil, the whole constraint
// is only enforced while reif holds, and the constraint's own violation
// forces reif false.
type LinearLE struct {
	ref  solver.PropRef
	vars []solver.IntView
	max  int64
	reif *solver.BView
}

// NewLinearLE returns an unreified LinearLE propagator. Constant views in
// vars are folded into max immediately, the same way the reference
// implementation's poster does.
func NewLinearLE(vars []solver.IntView, max int64) *LinearLE {
	return &LinearLE{vars: foldConstants(vars, &max), max: max}
}

// NewLinearLEImp returns a LinearLE propagator reified by reif: the
// constraint is only enforced while reif is true, and is itself capable of
// forcing reif false when the variables' lower bounds already violate it.
func NewLinearLEImp(vars []solver.IntView, max int64, reif solver.BView) *LinearLE {
	return &LinearLE{vars: foldConstants(vars, &max), max: max, reif: &reif}
}

func foldConstants(vars []solver.IntView, max *int64) []solver.IntView {
	out := make([]solver.IntView, 0, len(vars))
	for _, v := range vars {
		if c, ok := v.IsConst(); ok {
			*max -= c
			continue
		}
		out = append(out, v)
	}
	return out
}

// Name implements solver.Propagator.
func (p *LinearLE) Name() string { return "int_lin_le" }

// Priority implements solver.Propagator.
func (p *LinearLE) Priority() solver.Priority { return solver.PriorityLow }

// Subscribe implements solver.Propagator.
func (p *LinearLE) Subscribe(sub solver.Subscriber) {
	p.ref = sub.Self()
	for _, v := range p.vars {
		if ref, ok := v.Ref(); ok {
			sub.WatchBounds(ref)
		}
	}
	if p.reif != nil {
		sub.WatchBool(*p.reif)
	}
}

// Propagate implements solver.Propagator.
func (p *LinearLE) Propagate(ctx solver.PropagationContext) bool {
	if p.reif != nil {
		if v, ok := ctx.BoolValue(*p.reif); ok && !v {
			return true
		}
	}

	sum := p.max
	for _, v := range p.vars {
		sum -= v.LowerBound(ctx)
	}

	if p.reif != nil {
		if sum < 0 {
			if !ctx.SetBool(p.reif.Not(), solver.ReasonDeferred(p.ref, -1)) {
				return false
			}
		}
		if v, ok := ctx.BoolValue(*p.reif); !ok || !v {
			return true
		}
	}

	for i, v := range p.vars {
		ub := sum + v.LowerBound(ctx)
		if !v.SetUpperBound(ctx, ub, solver.ReasonDeferred(p.ref, int64(i))) {
			return false
		}
	}
	return true
}

// Explain implements solver.Explainer: the antecedents for the bound the
// propagator set on vars[data] (or, for data == -1, for forcing the
// reification literal false) are the lower-bound literals of every other
// variable in the sum, plus the reification literal itself if present.
func (p *LinearLE) Explain(_ z.Lit, data int64, actions solver.ExplainActions) []z.Lit {
	skip := int(data)
	lits := make([]z.Lit, 0, len(p.vars)+1)
	for j, v := range p.vars {
		if j == skip {
			continue
		}
		if lit, ok := v.LowerBoundLit(actions); ok {
			lits = append(lits, lit)
		}
	}
	if p.reif != nil && skip != -1 {
		if lit, ok := p.reif.Lit(); ok {
			lits = append(lits, lit)
		}
	}
	return lits
}

// CloneBox implements solver.Propagator.
func (p *LinearLE) CloneBox() solver.Propagator {
	clone := &LinearLE{vars: append([]solver.IntView(nil), p.vars...), max: p.max}
	if p.reif != nil {
		r := *p.reif
		clone.reif = &r
	}
	return clone
}

func (p *LinearLE) String() string {
	return fmt.Sprintf("int_lin_le(%v, %d)", p.vars, p.max)
}
