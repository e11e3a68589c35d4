package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntSetContains(t *testing.T) {
	s := NewIntSetFromRanges(IntRange{Lo: 1, Hi: 3}, IntRange{Lo: 7, Hi: 9})
	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(9))
	assert.False(t, s.Contains(4))
	assert.False(t, s.Contains(10))
}

func TestIntSetFromRangesMergesOverlaps(t *testing.T) {
	s := NewIntSetFromRanges(IntRange{Lo: 5, Hi: 8}, IntRange{Lo: 1, Hi: 4}, IntRange{Lo: 9, Hi: 10})
	require.Len(t, s.Ranges(), 1)
	assert.Equal(t, int64(1), s.LowerBound())
	assert.Equal(t, int64(10), s.UpperBound())
	assert.Equal(t, int64(10), s.Size())
}

func TestIntSetBounds(t *testing.T) {
	s := NewIntSet(-3, 5)
	assert.Equal(t, int64(-3), s.LowerBound())
	assert.Equal(t, int64(5), s.UpperBound())
	assert.Equal(t, int64(9), s.Size())
}

func TestIntSetEmptyRange(t *testing.T) {
	s := NewIntSet(5, 1)
	assert.True(t, s.IsEmpty())
}

func TestIntSetNextValueAfter(t *testing.T) {
	s := NewIntSetFromRanges(IntRange{Lo: 1, Hi: 3}, IntRange{Lo: 7, Hi: 9})
	v, ok := s.NextValueAfter(2)
	require.True(t, ok)
	assert.Equal(t, int64(3), v)

	v, ok = s.NextValueAfter(3)
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = s.NextValueAfter(9)
	assert.False(t, ok)
}

func TestIntSetPrevValueBefore(t *testing.T) {
	s := NewIntSetFromRanges(IntRange{Lo: 1, Hi: 3}, IntRange{Lo: 7, Hi: 9})
	v, ok := s.PrevValueBefore(8)
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	v, ok = s.PrevValueBefore(7)
	require.True(t, ok)
	assert.Equal(t, int64(3), v)

	_, ok = s.PrevValueBefore(1)
	assert.False(t, ok)
}

func TestIntSetOffsetOf(t *testing.T) {
	s := NewIntSet(5, 8) // 5,6,7,8
	_, ok := s.OffsetOf(5)
	assert.False(t, ok, "the minimum never gets an order-literal offset")

	off, ok := s.OffsetOf(6)
	require.True(t, ok)
	assert.Equal(t, int64(0), off)

	off, ok = s.OffsetOf(8)
	require.True(t, ok)
	assert.Equal(t, int64(2), off)

	_, ok = s.OffsetOf(42)
	assert.False(t, ok)
}

func TestIntSetOffsetOfMultiRange(t *testing.T) {
	s := NewIntSetFromRanges(IntRange{Lo: 1, Hi: 3}, IntRange{Lo: 7, Hi: 9})
	// interior values in order: 2, 3, 7, 8, 9
	off, ok := s.OffsetOf(2)
	require.True(t, ok)
	assert.Equal(t, int64(0), off)

	off, ok = s.OffsetOf(7)
	require.True(t, ok)
	assert.Equal(t, int64(2), off)

	off, ok = s.OffsetOf(9)
	require.True(t, ok)
	assert.Equal(t, int64(4), off)
}
