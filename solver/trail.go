package solver

import (
	"github.com/go-air/gini/z"
)

// TInt identifies a trailed integer cell. Writes to the cell are journalled
// on the Trail so they can be undone on backtrack, the same way a trailed
// integer works in the reference LCG implementation this package is based
// on. The zero TInt is reserved: the engine uses it to track the index of
// the currently active brancher.
type TInt uint32

// CurrentBrancher is the TInt the engine reserves to track the index of the
// brancher that should be consulted next when the oracle asks for a free
// decision.
const CurrentBrancher TInt = 0

type boolCell struct {
	hasValue   bool
	value      bool
	hasRestore bool
	restore    bool
}

type trailEventKind uint8

const (
	eventSat trailEventKind = iota
	eventInt
)

type trailEvent struct {
	kind trailEventKind
	v    z.Var // eventSat
	i    TInt  // eventInt
	prev int64 // eventInt: previous value
}

// Trail is an append-only journal of reversible assignments. Boolean
// variable assignments and TInt writes are both recorded so that
// notify_backtrack can restore every piece of trailed state to the value it
// held at the start of the requested decision level. The cursor supports
// moving in both directions: undo (strictly decreasing) happens on ordinary
// backtracking, while redo (strictly increasing, never past the recorded
// length) happens only when the oracle asks for a lazy explanation of a
// literal that has since been untrailed.
type Trail struct {
	events  []trailEvent
	pos     int
	prevLen []int

	intValues  []int64
	boolValues []boolCell
}

// NewTrail returns an empty Trail.
func NewTrail() *Trail {
	return &Trail{}
}

// DecisionLevel returns the number of decision levels currently open.
func (t *Trail) DecisionLevel() int {
	return len(t.prevLen)
}

func (t *Trail) atRoot() bool {
	return len(t.prevLen) == 0
}

// GrowToVar ensures storage exists to track the assignment of var.
func (t *Trail) GrowToVar(v z.Var) {
	idx := int(v)
	if idx >= len(t.boolValues) {
		grown := make([]boolCell, idx+1)
		copy(grown, t.boolValues)
		t.boolValues = grown
	}
}

// AssignLit records the assignment of lit, returning the variable's
// previous value, if any. Callers must have already grown the trail to
// cover lit's variable via GrowToVar.
func (t *Trail) AssignLit(lit z.Lit) (prev bool, hadPrev bool) {
	v := lit.Var()
	val := lit.IsPos()
	cell := &t.boolValues[v]
	prev, hadPrev = cell.value, cell.hasValue
	cell.value, cell.hasValue = val, true
	if !hadPrev && !t.atRoot() {
		t.push(trailEvent{kind: eventSat, v: v})
	}
	return prev, hadPrev
}

// GetSatValue returns the literal's current value, if assigned.
func (t *Trail) GetSatValue(lit z.Lit) (bool, bool) {
	v := int(lit.Var())
	if v >= len(t.boolValues) {
		return false, false
	}
	cell := t.boolValues[v]
	if !cell.hasValue {
		return false, false
	}
	if lit.IsPos() {
		return cell.value, true
	}
	return !cell.value, true
}

// TrackInt creates a new trailed integer cell with the given initial value.
func (t *Trail) TrackInt(initial int64) TInt {
	t.intValues = append(t.intValues, initial)
	return TInt(len(t.intValues) - 1)
}

// Get returns the current value of a trailed integer.
func (t *Trail) Get(i TInt) int64 {
	return t.intValues[i]
}

// Set writes a new value to a trailed integer, appending an undo record iff
// the value actually changes and the trail is below the root level. The
// previous value is returned.
func (t *Trail) Set(i TInt, v int64) int64 {
	old := t.intValues[i]
	if old == v {
		return old
	}
	t.intValues[i] = v
	if !t.atRoot() {
		t.push(trailEvent{kind: eventInt, i: i, prev: old})
	}
	return old
}

func (t *Trail) push(e trailEvent) {
	if t.pos != len(t.events) {
		panic("solver: trail push while cursor is not at the end")
	}
	t.events = append(t.events, e)
	t.pos = len(t.events)
}

// NotifyNewDecisionLevel records the current trail length so a later
// NotifyBacktrack can restore to this point.
func (t *Trail) NotifyNewDecisionLevel() {
	t.prevLen = append(t.prevLen, len(t.events))
}

// NotifyBacktrack truncates the prev-length stack to level and repositions
// the cursor (and the underlying state) to match, undoing or redoing events
// as necessary. It is a no-op if level is not below the current decision
// level (this tolerates oracles that report a backtrack to a level that has
// already been left, which some CDCL implementations do around restarts).
func (t *Trail) NotifyBacktrack(level int) {
	if level >= len(t.prevLen) {
		return
	}
	target := t.prevLen[level]
	t.prevLen = t.prevLen[:level]
	for t.pos > target {
		t.undo(true)
	}
	for t.pos < target {
		t.redo()
	}
	t.events = t.events[:target]
}

// GotoAssignLit repositions the cursor, without truncating the trail, to
// the point at which lit was first assigned: just before lit's own
// assignment event, so lit reads as unassigned while everything assigned
// before it reads as it did then. This is used exclusively to
// serve lazy explanations requested by the oracle after search state has
// moved on: the caller is expected to let the cursor move back to its
// prior position once the explanation has been produced (NotifyBacktrack or
// further redo calls do this naturally as search resumes). If lit's
// variable is not currently assigned but has a value in the undone tail of
// the trail, the cursor moves forward to the point of assignment; if
// neither holds, the literal was never assigned (or is a root-level fact)
// and the call is a silent no-op, per the best-effort policy spec.md §9
// describes for stale lazy-explanation requests.
func (t *Trail) GotoAssignLit(lit z.Lit) {
	v := lit.Var()
	if int(v) < len(t.boolValues) && t.boolValues[v].hasValue {
		for {
			e := t.undo(true)
			if e == nil {
				return
			}
			if e.kind == eventSat && e.v == v {
				return
			}
		}
	}
	for {
		e := t.redo()
		if e == nil {
			return
		}
		if e.kind == eventSat && e.v == v {
			t.undo(true)
			return
		}
	}
}

// SettleExplanations redoes every event GotoAssignLit may have undone while
// answering AddReasonClause requests made outside of conflict handling (an
// actual backtrack already realigns the cursor via NotifyBacktrack's
// explicit target walk, so this is only needed when none follows). It
// restores the cursor to the live present without creating new events.
func (t *Trail) SettleExplanations() {
	for t.redo() != nil {
	}
}

// undo reverts the event immediately before the cursor and decrements it.
// When restore is true, enough information is kept to redo the event later.
func (t *Trail) undo(restore bool) *trailEvent {
	if t.pos == 0 {
		return nil
	}
	t.pos--
	e := &t.events[t.pos]
	switch e.kind {
	case eventSat:
		cell := &t.boolValues[e.v]
		old := cell.value
		hadValue := cell.hasValue
		cell.hasValue = false
		if restore {
			cell.restore, cell.hasRestore = old, hadValue
		}
	case eventInt:
		cur := t.intValues[e.i]
		t.intValues[e.i] = e.prev
		if restore {
			e.prev = cur
		}
	}
	return e
}

// redo re-applies the event immediately after the cursor and increments it.
// It only ever replays events that undo left in place for this purpose.
func (t *Trail) redo() *trailEvent {
	if t.pos == len(t.events) {
		return nil
	}
	e := &t.events[t.pos]
	t.pos++
	switch e.kind {
	case eventSat:
		cell := &t.boolValues[e.v]
		val, had := cell.restore, cell.hasRestore
		cell.value, cell.hasValue = val, had
	case eventInt:
		cur := t.intValues[e.i]
		t.intValues[e.i] = e.prev
		e.prev = cur
	}
	return e
}
