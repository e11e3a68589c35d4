package solver

import (
	"sort"

	"github.com/go-air/gini/z"
)

// eagerRange is a contiguous block of oracle variables created for one
// IVar's eager order or direct encoding.
type eagerRange struct {
	start z.Var
	count int
	ivar  IVarRef
	// direct is true for a direct (equality) range, false for an order
	// range. The two ranges for the same IVar are stored as separate
	// entries.
	direct bool
}

// lazyEntry records the meaning a lazily-created oracle variable stands
// for.
type lazyEntry struct {
	ivar    IVarRef
	meaning LitMeaning
}

// BoolIntMap answers, for any oracle literal, which integer condition (if
// any) it represents. Eager ranges are kept in a sorted slice and searched
// by binary search (their meaning is recoverable from the offset, so no
// meaning is stored per-entry); lazily created literals store their
// meaning explicitly in a hash map, per spec.md §4.3.
type BoolIntMap struct {
	eager []eagerRange // sorted by start, non-overlapping
	lazy  map[z.Var]lazyEntry
}

// NewBoolIntMap returns an empty map.
func NewBoolIntMap() *BoolIntMap {
	return &BoolIntMap{lazy: make(map[z.Var]lazyEntry)}
}

// InsertEager registers a contiguous range of count oracle variables
// starting at start as belonging to ivar's order (direct=false) or direct
// (direct=true) encoding. Ranges must be inserted in non-decreasing,
// non-overlapping order.
func (m *BoolIntMap) InsertEager(start z.Var, count int, ivar IVarRef, direct bool) {
	if count == 0 {
		return
	}
	if n := len(m.eager); n > 0 {
		last := m.eager[n-1]
		if int(start) < int(last.start)+last.count {
			panic("solver: eager ranges must be inserted in non-overlapping order")
		}
	}
	m.eager = append(m.eager, eagerRange{start: start, count: count, ivar: ivar, direct: direct})
}

// InsertLazy registers a single lazily-created oracle variable as standing
// for meaning on ivar.
func (m *BoolIntMap) InsertLazy(v z.Var, ivar IVarRef, meaning LitMeaning) {
	m.lazy[v] = lazyEntry{ivar: ivar, meaning: meaning}
}

// eagerLookup finds the eager range (if any) containing v, returning it
// and v's offset within the range.
func (m *BoolIntMap) eagerLookup(v z.Var) (eagerRange, int, bool) {
	i := sort.Search(len(m.eager), func(i int) bool {
		return int(m.eager[i].start)+m.eager[i].count-1 >= int(v)
	})
	if i >= len(m.eager) {
		return eagerRange{}, 0, false
	}
	r := m.eager[i]
	if int(v) < int(r.start) {
		return eagerRange{}, 0, false
	}
	return r, int(v) - int(r.start), true
}

// IVarOf returns the IVar a literal's variable belongs to, if any.
func (m *BoolIntMap) IVarOf(lit z.Lit) (IVarRef, bool) {
	v := lit.Var()
	if r, _, ok := m.eagerLookup(v); ok {
		return r.ivar, true
	}
	if e, ok := m.lazy[v]; ok {
		return e.ivar, true
	}
	return 0, false
}

// MeaningOf returns the LitMeaning of lit, given the domain needed to
// translate an eager range offset back into a value (lit_meaning,
// spec.md §4.2, eager ranges only — lazy literals already store their
// meaning).
func (m *BoolIntMap) MeaningOf(lit z.Lit, domain IntSet) (LitMeaning, bool) {
	v := lit.Var()
	if r, offset, ok := m.eagerLookup(v); ok {
		var base LitMeaning
		if r.direct {
			val, ok := domain.nthInterior(offset, true)
			if !ok {
				return LitMeaning{}, false
			}
			base = Eq(val)
		} else {
			val, ok := domain.nthInterior(offset, false)
			if !ok {
				return LitMeaning{}, false
			}
			base = Less(val)
		}
		if lit.IsPos() {
			return base, true
		}
		return base.Negate(), true
	}
	if e, ok := m.lazy[v]; ok {
		if lit.IsPos() {
			return e.meaning, true
		}
		return e.meaning.Negate(), true
	}
	return LitMeaning{}, false
}

// nthInterior returns the value at zero-based offset i among the domain's
// non-minimum values (excludeMax=false, used for order-literal offsets) or
// among its non-minimum, non-maximum values (excludeMax=true, used for
// direct-literal offsets).
func (s IntSet) nthInterior(i int, excludeMax bool) (int64, bool) {
	target := int64(i) + 1 // skip the minimum: offset 0 is the 2nd value
	var seen int64
	for _, r := range s.ranges {
		n := r.Len()
		if seen+n > target {
			v := r.Lo + (target - seen)
			if excludeMax && v == s.UpperBound() {
				return 0, false
			}
			return v, true
		}
		seen += n
	}
	return 0, false
}
