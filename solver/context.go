package solver

import "github.com/go-air/gini/z"

// engineContext is the concrete PropagationContext handed to whichever
// propagator is currently running. Every Set*/Exclude method posts a
// literal to the oracle via the pending-assignment path (AssignLit on the
// trail plus a recorded Reason), exactly mirroring what NotifyAssignments
// would have done had the oracle itself assigned the literal; the oracle
// only actually learns about it later, when the engine's Propagate return
// value reports it.
type engineContext struct {
	e          *Engine
	current    PropRef
	propagated *[]z.Lit // nil during CheckSolution's final consistency pass
}

var _ PropagationContext = (*engineContext)(nil)

func (c *engineContext) LowerBound(v IVarRef) int64 {
	lb, _ := c.e.GetBounds(v)
	return lb
}

func (c *engineContext) UpperBound(v IVarRef) int64 {
	_, ub := c.e.GetBounds(v)
	return ub
}

func (c *engineContext) InDomain(v IVarRef, val int64) bool {
	return c.e.CheckInDomain(v, val)
}

func (c *engineContext) SetLowerBound(v IVarRef, val int64, reason Reason) bool {
	if val <= c.LowerBound(v) {
		return true
	}
	return c.post(c.e.BoolLit(v, GreaterEq(val)), reason)
}

func (c *engineContext) SetUpperBound(v IVarRef, val int64, reason Reason) bool {
	if val >= c.UpperBound(v) {
		return true
	}
	return c.post(c.e.BoolLit(v, Less(val+1)), reason)
}

func (c *engineContext) SetValue(v IVarRef, val int64, reason Reason) bool {
	return c.post(c.e.BoolLit(v, Eq(val)), reason)
}

func (c *engineContext) ExcludeValue(v IVarRef, val int64, reason Reason) bool {
	return c.post(c.e.BoolLit(v, NotEq(val)), reason)
}

func (c *engineContext) BoolValue(b BView) (bool, bool) {
	switch b.kind {
	case bViewConst:
		return b.cst, true
	case bViewUnresolved:
		lit := c.e.BoolLit(b.ivar, b.meaning)
		return c.e.trail.GetSatValue(lit)
	default:
		return c.e.trail.GetSatValue(b.lit)
	}
}

func (c *engineContext) SetBool(b BView, reason Reason) bool {
	switch b.kind {
	case bViewConst:
		return b.cst
	case bViewUnresolved:
		return c.post(c.e.BoolLit(b.ivar, b.meaning), reason)
	default:
		return c.post(b.lit, reason)
	}
}

// post assigns lit, recording reason for later explanation and detecting
// an immediate conflict against any prior, contradictory assignment of the
// same variable.
func (c *engineContext) post(lit z.Lit, reason Reason) bool {
	if cur, assigned := c.e.trail.GetSatValue(lit); assigned {
		if !cur {
			c.e.conflict = c.e.buildConflict(lit, reason)
		}
		return cur
	}
	c.e.trail.GrowToVar(lit.Var())
	c.e.trail.AssignLit(lit)
	if !reason.IsTrivial() {
		c.e.reasons.Put(lit.Var(), reason, c.e.trail.DecisionLevel())
	}
	if ivar, ok := c.e.boolIntMap.IVarOf(lit); ok {
		c.e.onLitAssigned(ivar, lit)
	}
	for _, act := range c.e.boolWatches[lit.Var()] {
		c.e.queue.Push(act.prop, act.lvl)
	}
	if c.propagated != nil {
		*c.propagated = append(*c.propagated, lit)
	}
	return true
}
