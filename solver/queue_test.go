package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropQueuePriorityOrder(t *testing.T) {
	q := newPropQueue()
	q.Push(PropRef(2), PriorityLow)
	q.Push(PropRef(1), PriorityHighest)
	q.Push(PropRef(3), PriorityImmediate)

	p, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, PropRef(3), p)

	p, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, PropRef(1), p)

	p, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, PropRef(2), p)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestPropQueueFIFOWithinLevel(t *testing.T) {
	q := newPropQueue()
	q.Push(PropRef(1), PriorityNormal)
	q.Push(PropRef(2), PriorityNormal)
	q.Push(PropRef(3), PriorityNormal)

	var order []PropRef
	for {
		p, ok := q.Pop()
		if !ok {
			break
		}
		order = append(order, p)
	}
	assert.Equal(t, []PropRef{1, 2, 3}, order)
}

func TestPropQueueDedup(t *testing.T) {
	q := newPropQueue()
	q.Push(PropRef(1), PriorityNormal)
	q.Push(PropRef(1), PriorityNormal)

	_, ok := q.Pop()
	require.True(t, ok)
	_, ok = q.Pop()
	assert.False(t, ok, "pushing an already-pending propagator must not duplicate it")
}

func TestPropQueueDedupAcrossLevelsKeepsFirst(t *testing.T) {
	q := newPropQueue()
	q.Push(PropRef(1), PriorityLowest)
	q.Push(PropRef(1), PriorityImmediate) // already pending: ignored

	assert.True(t, q.enqueued[1])
	assert.Len(t, q.levels[PriorityLowest], 1)
	assert.Len(t, q.levels[PriorityImmediate], 0)
}

func TestPropQueueClear(t *testing.T) {
	q := newPropQueue()
	q.Push(PropRef(1), PriorityNormal)
	q.Push(PropRef(2), PriorityLow)
	q.Clear()
	assert.True(t, q.Empty())
	_, ok := q.Pop()
	assert.False(t, ok)
	// After Clear, pushing the same ref again must work (dedup flag reset).
	q.Push(PropRef(1), PriorityNormal)
	_, ok = q.Pop()
	assert.True(t, ok)
}

func TestPropQueueEmpty(t *testing.T) {
	q := newPropQueue()
	assert.True(t, q.Empty())
	q.Push(PropRef(0), PriorityNormal)
	assert.False(t, q.Empty())
}

func TestActivationListNotifyValueEventSkipsBoundsSubscriber(t *testing.T) {
	q := newPropQueue()
	al := newActivationList()
	al.Subscribe(IVarRef(1), PropRef(5), PriorityNormal, activateBounds)

	al.Notify(q, IVarRef(1), activateValue)
	_, ok := q.Pop()
	assert.False(t, ok, "a bounds subscriber is not woken by a value-exclusion event")
}

func TestActivationListNotifyBoundsEventWakesValueSubscriber(t *testing.T) {
	q := newPropQueue()
	al := newActivationList()
	al.Subscribe(IVarRef(1), PropRef(5), PriorityNormal, activateValue)

	al.Notify(q, IVarRef(1), activateBounds)
	_, ok := q.Pop()
	assert.True(t, ok, "a value subscriber also wakes on a bounds event")
}

func TestActivationListNotifyOnlyTargetedVar(t *testing.T) {
	q := newPropQueue()
	al := newActivationList()
	al.Subscribe(IVarRef(1), PropRef(5), PriorityNormal, activateBounds)

	al.Notify(q, IVarRef(2), activateBounds)
	assert.True(t, q.Empty())
}
