// Package allocation converts fractional distribution weights into exact
// integer deg amounts. TT amounts are reported for humans; deg is the unit
// that actually moves, so the conversion must neither create nor lose a
// single deg to rounding.
package allocation

import (
	"math"
	"sort"

	"github.com/teknia/knud/internal/knu"
)

// DegPerTT is the TT v3.14 conversion constant: 1 TT = 360 deg.
const DegPerTT int64 = 360

// PoolDeg returns the integer deg size of a pool expressed in TT.
func PoolDeg(poolTT float64, degPerTT int64) int64 {
	return int64(math.Floor(poolTT * float64(degPerTT)))
}

// Convert allocates the pool across the weighted entries, in the order
// they are supplied. Every entry but the last gets the floor of its
// proportional share; the last entry absorbs the accumulated rounding
// remainder so the deg amounts always sum to PoolDeg exactly. The order
// therefore matters: callers wanting reproducibility independent of input
// order should canonicalize with SortByID first.
//
// degPerTT must be positive.
func Convert(poolTT float64, weighted []knu.Weighted, degPerTT int64) []knu.Allocation {
	if len(weighted) == 0 {
		return nil
	}

	poolDeg := PoolDeg(poolTT, degPerTT)

	allocations := make([]knu.Allocation, len(weighted))
	var distributed int64
	for i, w := range weighted {
		deg := int64(math.Floor(float64(poolDeg) * w.Weight))
		if i == len(weighted)-1 {
			// Exact-sum correction: the last entry takes whatever the
			// floor truncation left behind.
			deg = poolDeg - distributed
		}
		distributed += deg

		allocations[i] = knu.Allocation{
			KnuID:     w.Entry.ID,
			Owner:     w.Entry.Owner,
			Weight:    w.Weight,
			TokensTT:  float64(deg) / float64(degPerTT),
			TokensDeg: deg,
		}
	}
	return allocations
}

// SortByID orders weighted entries by knu_id. Convert assigns the rounding
// remainder to the last entry, so a canonical order makes the result
// independent of how the input batch happened to be arranged.
func SortByID(weighted []knu.Weighted) {
	sort.Slice(weighted, func(i, j int) bool {
		return weighted[i].Entry.ID < weighted[j].Entry.ID
	})
}
