package solver

import (
	"testing"

	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(v int, pos bool) z.Lit {
	l := z.Var(v).Pos()
	if !pos {
		return l.Not()
	}
	return l
}

func TestTrailAssignAndBacktrack(t *testing.T) {
	tr := NewTrail()
	tr.GrowToVar(z.Var(3))

	tr.NotifyNewDecisionLevel()
	tr.AssignLit(lit(1, true))
	val, ok := tr.GetSatValue(lit(1, true))
	require.True(t, ok)
	assert.True(t, val)

	tr.NotifyNewDecisionLevel()
	tr.AssignLit(lit(2, false))
	val, ok = tr.GetSatValue(lit(2, true))
	require.True(t, ok)
	assert.False(t, val)

	assert.Equal(t, 2, tr.DecisionLevel())

	tr.NotifyBacktrack(1)
	assert.Equal(t, 1, tr.DecisionLevel())
	_, ok = tr.GetSatValue(lit(2, true))
	assert.False(t, ok, "level-2 assignment must be undone")
	val, ok = tr.GetSatValue(lit(1, true))
	require.True(t, ok)
	assert.True(t, val, "level-1 assignment survives a backtrack to level 1")

	tr.NotifyBacktrack(0)
	assert.Equal(t, 0, tr.DecisionLevel())
	_, ok = tr.GetSatValue(lit(1, true))
	assert.False(t, ok)
}

func TestTrailTrackedInt(t *testing.T) {
	tr := NewTrail()
	i := tr.TrackInt(0)
	assert.Equal(t, int64(0), tr.Get(i))

	tr.NotifyNewDecisionLevel()
	tr.Set(i, 5)
	assert.Equal(t, int64(5), tr.Get(i))

	tr.NotifyNewDecisionLevel()
	tr.Set(i, 9)
	assert.Equal(t, int64(9), tr.Get(i))

	tr.NotifyBacktrack(1)
	assert.Equal(t, int64(5), tr.Get(i))

	tr.NotifyBacktrack(0)
	assert.Equal(t, int64(0), tr.Get(i))
}

func TestTrailSetNoOpWhenUnchanged(t *testing.T) {
	tr := NewTrail()
	i := tr.TrackInt(7)
	tr.NotifyNewDecisionLevel()
	old := tr.Set(i, 7)
	assert.Equal(t, int64(7), old)
	tr.NotifyBacktrack(0)
	assert.Equal(t, int64(7), tr.Get(i), "setting to the same value leaves nothing to undo")
}

func TestTrailGotoAssignLitAndBack(t *testing.T) {
	tr := NewTrail()
	tr.GrowToVar(z.Var(2))

	tr.NotifyNewDecisionLevel()
	tr.AssignLit(lit(1, true))
	tr.NotifyNewDecisionLevel()
	tr.AssignLit(lit(2, true))

	// Rewinding to lit 1 undoes both assignments but keeps them in the
	// undone tail of the trail.
	tr.GotoAssignLit(lit(1, true))
	_, ok := tr.GetSatValue(lit(1, true))
	require.False(t, ok)

	// Asking for lit 2 replays forward: lit 1 is assigned again and the
	// cursor stops just before lit 2's assignment.
	tr.GotoAssignLit(lit(2, true))
	val, ok := tr.GetSatValue(lit(1, true))
	require.True(t, ok, "GotoAssignLit replays history forward to the point lit 2 was assigned")
	assert.True(t, val)

	// Returning to a live state: a backtrack walks the cursor to its
	// target and drops the undone tail.
	tr.NotifyBacktrack(0)
	_, ok = tr.GetSatValue(lit(1, true))
	assert.False(t, ok)
}

func TestTrailGotoAssignLitNeverAssignedIsNoOp(t *testing.T) {
	tr := NewTrail()
	tr.GrowToVar(z.Var(5))
	tr.NotifyNewDecisionLevel()
	tr.AssignLit(lit(1, true))

	before := tr.DecisionLevel()
	tr.GotoAssignLit(lit(4, true))
	assert.Equal(t, before, tr.DecisionLevel())
}
