package propagators

import (
	"fmt"

	"github.com/go-air/gini/z"

	"github.com/dannem1337/huub-solver/solver"
)

// LinearNE enforces sum(vars) != violation, value-consistently: it fires
// only once every variable but (at most) one in the sum is fixed, at which
// point it either forces the last variable away from the single value that
// would make the sum equal violation, or, if every variable is already
// fixed, reports the conflict (or forces reif false), mirroring the
// reference huub implementation's int_lin_ne. If reif is non-nil, the
// constraint is only enforced while reif holds.
type LinearNE struct {
	ref       solver.PropRef
	vars      []solver.IntView
	violation int64
	reif      *solver.BView
}

// NewLinearNE returns an unreified LinearNE propagator. Constant views in
// vars are folded into violation immediately.
func NewLinearNE(vars []solver.IntView, violation int64) *LinearNE {
	return &LinearNE{vars: foldConstants(vars, &violation), violation: violation}
}

// NewLinearNEImp returns a LinearNE propagator reified by reif.
func NewLinearNEImp(vars []solver.IntView, violation int64, reif solver.BView) *LinearNE {
	return &LinearNE{vars: foldConstants(vars, &violation), violation: violation, reif: &reif}
}

// Name implements solver.Propagator.
func (p *LinearNE) Name() string { return "int_lin_ne" }

// Priority implements solver.Propagator.
func (p *LinearNE) Priority() solver.Priority { return solver.PriorityLow }

// Subscribe implements solver.Propagator.
func (p *LinearNE) Subscribe(sub solver.Subscriber) {
	p.ref = sub.Self()
	for _, v := range p.vars {
		if ref, ok := v.Ref(); ok {
			sub.WatchValue(ref)
		}
	}
	if p.reif != nil {
		sub.WatchBool(*p.reif)
	}
}

// Propagate implements solver.Propagator. It is value-consistent, not
// bounds-consistent: it does nothing until at most one variable remains
// unfixed.
func (p *LinearNE) Propagate(ctx solver.PropagationContext) bool {
	if p.reif != nil {
		if v, ok := ctx.BoolValue(*p.reif); ok && !v {
			return true
		}
	}

	sum := int64(0)
	unfixedIdx := -1
	for i, v := range p.vars {
		if val, ok := v.Fixed(ctx); ok {
			sum += val
			continue
		}
		if unfixedIdx != -1 {
			return true // two or more unfixed: nothing to do yet
		}
		unfixedIdx = i
	}

	if unfixedIdx != -1 {
		if p.reif != nil {
			if _, ok := ctx.BoolValue(*p.reif); !ok {
				return true // reification not fixed true yet, can't force anything
			}
		}
		forbidden := p.violation - sum
		return p.vars[unfixedIdx].ExcludeValue(ctx, forbidden, solver.ReasonDeferred(p.ref, int64(unfixedIdx)))
	}

	if sum != p.violation {
		return true
	}
	if p.reif != nil {
		return ctx.SetBool(p.reif.Not(), solver.ReasonDeferred(p.ref, int64(len(p.vars))))
	}
	// Unreified and every variable is already fixed to a combination that
	// sums to violation: excluding the first variable's own (already
	// asserted) value is a direct contradiction, which ctx surfaces as a
	// conflict the same way any other clashing assignment would be.
	val0, _ := p.vars[0].Fixed(ctx)
	return p.vars[0].ExcludeValue(ctx, val0, solver.ReasonDeferred(p.ref, int64(len(p.vars))))
}

// Explain implements solver.Explainer: the antecedents are the fixed
// values of every other variable, each pinned by both its lower- and
// upper-bound literal (citing only the lower bound would leave the
// variable merely bounded below, not fixed, and the clause would not be
// entailed), plus the reification literal if present and this isn't the
// reification's own explanation.
func (p *LinearNE) Explain(_ z.Lit, data int64, actions solver.ExplainActions) []z.Lit {
	skip := int(data)
	lits := make([]z.Lit, 0, 2*len(p.vars)+1)
	for j, v := range p.vars {
		if j == skip {
			continue
		}
		if lit, ok := v.LowerBoundLit(actions); ok {
			lits = append(lits, lit)
		}
		if lit, ok := v.UpperBoundLit(actions); ok {
			lits = append(lits, lit)
		}
	}
	if p.reif != nil && skip != len(p.vars) {
		if lit, ok := p.reif.Lit(); ok {
			lits = append(lits, lit)
		}
	}
	return lits
}

// CloneBox implements solver.Propagator.
func (p *LinearNE) CloneBox() solver.Propagator {
	clone := &LinearNE{vars: append([]solver.IntView(nil), p.vars...), violation: p.violation}
	if p.reif != nil {
		r := *p.reif
		clone.reif = &r
	}
	return clone
}

func (p *LinearNE) String() string {
	return fmt.Sprintf("int_lin_ne(%v, %d)", p.vars, p.violation)
}
