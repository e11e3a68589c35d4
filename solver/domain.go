package solver

import "sort"

// IntRange is an inclusive range of integer values.
type IntRange struct {
	Lo, Hi int64
}

// Len returns the number of values contained in the range.
func (r IntRange) Len() int64 {
	return r.Hi - r.Lo + 1
}

// IntSet is an ordered, disjoint union of inclusive integer ranges: the
// representation used for the initial domain of an integer variable.
type IntSet struct {
	ranges []IntRange
}

// NewIntSet builds an IntSet from a single contiguous range.
func NewIntSet(lo, hi int64) IntSet {
	if hi < lo {
		return IntSet{}
	}
	return IntSet{ranges: []IntRange{{Lo: lo, Hi: hi}}}
}

// NewIntSetFromRanges builds an IntSet from arbitrary, possibly unsorted and
// overlapping, ranges, normalizing them into the canonical disjoint form.
func NewIntSetFromRanges(ranges ...IntRange) IntSet {
	if len(ranges) == 0 {
		return IntSet{}
	}
	sorted := append([]IntRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })
	out := []IntRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return IntSet{ranges: out}
}

// Ranges returns the disjoint ranges composing the set, in ascending order.
func (s IntSet) Ranges() []IntRange {
	return s.ranges
}

// IsEmpty reports whether the set contains no values.
func (s IntSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// LowerBound returns the set's minimum value. Panics if the set is empty.
func (s IntSet) LowerBound() int64 {
	return s.ranges[0].Lo
}

// UpperBound returns the set's maximum value. Panics if the set is empty.
func (s IntSet) UpperBound() int64 {
	return s.ranges[len(s.ranges)-1].Hi
}

// Size returns the number of distinct values in the set.
func (s IntSet) Size() int64 {
	var n int64
	for _, r := range s.ranges {
		n += r.Len()
	}
	return n
}

// Contains reports whether v lies within the set.
func (s IntSet) Contains(v int64) bool {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Hi >= v })
	return i < len(s.ranges) && s.ranges[i].Lo <= v
}

// NextValueAfter returns the smallest value in the set strictly greater
// than v, and whether one exists.
func (s IntSet) NextValueAfter(v int64) (int64, bool) {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Hi > v })
	if i >= len(s.ranges) {
		return 0, false
	}
	if s.ranges[i].Lo > v {
		return s.ranges[i].Lo, true
	}
	return v + 1, true
}

// PrevValueBefore returns the largest value in the set strictly less than
// v, and whether one exists.
func (s IntSet) PrevValueBefore(v int64) (int64, bool) {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Hi >= v })
	if i == len(s.ranges) {
		i--
	}
	for ; i >= 0; i-- {
		if s.ranges[i].Hi < v {
			return s.ranges[i].Hi, true
		}
		if s.ranges[i].Lo < v {
			return v - 1, true
		}
	}
	return 0, false
}

// OffsetOf returns the zero-based index of v among the set's interior
// values, i.e. every value except the minimum, the layout used to size the
// eager order-literal range. ok is false if v is the minimum or is not a
// member of the set.
func (s IntSet) OffsetOf(v int64) (offset int64, ok bool) {
	if v == s.LowerBound() {
		return 0, false
	}
	var seen int64
	for _, r := range s.ranges {
		if v >= r.Lo && v <= r.Hi {
			if r.Lo == s.LowerBound() {
				return seen + (v - r.Lo) - 1, true
			}
			return seen + (v - r.Lo), true
		}
		n := r.Len()
		if r.Lo == s.LowerBound() {
			n--
		}
		seen += n
	}
	return 0, false
}
