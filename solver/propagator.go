package solver

import "github.com/go-air/gini/z"

// PropagationContext is the narrow façade a Propagator's Propagate method
// uses to read the current state and post new facts. Every mutating method
// returns ok=false the moment it detects a conflict, at which point the
// propagator must stop and return that conflict immediately — it must not
// keep calling further Set* methods (spec.md §4.7).
type PropagationContext interface {
	// LowerBound and UpperBound read v's current bounds.
	LowerBound(v IVarRef) int64
	UpperBound(v IVarRef) int64
	// InDomain reports whether val is currently in v's domain.
	InDomain(v IVarRef, val int64) bool
	// SetLowerBound tightens v's lower bound to at least val, explained by
	// reason. ok is false if this immediately conflicts with the current
	// upper bound.
	SetLowerBound(v IVarRef, val int64, reason Reason) (ok bool)
	// SetUpperBound tightens v's upper bound to at most val, explained by
	// reason.
	SetUpperBound(v IVarRef, val int64, reason Reason) (ok bool)
	// SetValue fixes v to val, explained by reason.
	SetValue(v IVarRef, val int64, reason Reason) (ok bool)
	// ExcludeValue removes val from v's domain, explained by reason.
	ExcludeValue(v IVarRef, val int64, reason Reason) (ok bool)
	// SetBool assigns b's underlying literal, explained by reason. Calling
	// this on a view that resolves to a constant is a no-op if the
	// constant agrees and a conflict if it does not.
	SetBool(b BView, reason Reason) (ok bool)
	// BoolValue reads b's current truth value, if assigned.
	BoolValue(b BView) (value bool, assigned bool)
}

// Propagator narrows a set of IVars' and BViews' domains whenever the
// conditions it subscribed to (via its Subscriptions) change, per
// spec.md §4.7. Implementations must be safe to clone via CloneBox:
// Subscribe is called once per clone, after cloning, to let the
// propagator register its subscriptions against the new Engine.
type Propagator interface {
	// Name identifies the propagator for diagnostics.
	Name() string
	// Priority is the queue level this propagator prefers. Engine.Post
	// schedules the propagator at the level passed to Post and does not
	// consult this value.
	Priority() Priority
	// Subscribe is called once, when the propagator is posted, to
	// register its interest in IVar/BView events with sub.
	Subscribe(sub Subscriber)
	// Propagate runs the propagator to fixpoint against the current
	// bounds, using ctx to read state and post new facts. It returns
	// false the moment ctx reports a conflict.
	Propagate(ctx PropagationContext) bool
	// CloneBox returns a deep copy of the propagator suitable for
	// posting against a different Engine (used when an Engine is cloned
	// for parallel search, spec.md §4.7).
	CloneBox() Propagator
}

// Subscriber is passed to Propagator.Subscribe so a propagator can
// register which IVar/BView events should re-enqueue it.
type Subscriber interface {
	// WatchBounds re-enqueues the propagator whenever v's lower or upper
	// bound changes.
	WatchBounds(v IVarRef)
	// WatchValue re-enqueues the propagator whenever any value is
	// removed from v's domain (implies WatchBounds for bound changes
	// too).
	WatchValue(v IVarRef)
	// WatchBool re-enqueues the propagator whenever b's underlying
	// literal is assigned.
	WatchBool(b BView)
	// Self returns the PropRef the propagator was posted under, for use
	// in ReasonDeferred.
	Self() PropRef
}

// Brancher supplies decision literals when the oracle has no opinion of
// its own (spec.md §4.10). Branchers are tried in posting order; the first
// one to return a non-zero literal wins.
type Brancher interface {
	Name() string
	// Decide returns the next decision literal, or z.LitNull if this
	// brancher has nothing left to decide (e.g. every IVar it watches is
	// already fixed), in which case the next posted brancher is tried.
	Decide(ctx PropagationContext) z.Lit
	// CloneBox returns a deep copy suitable for a different Engine.
	CloneBox() Brancher
}
