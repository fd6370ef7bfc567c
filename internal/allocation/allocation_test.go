package allocation

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teknia/knud/internal/knu"
)

func weighted(id string, weight float64) knu.Weighted {
	return knu.Weighted{
		Entry:  knu.Entry{ID: id, KnotID: "K06", Owner: "owner-" + id},
		Weight: weight,
	}
}

func degSum(allocations []knu.Allocation) int64 {
	var total int64
	for _, a := range allocations {
		total += a.TokensDeg
	}
	return total
}

func TestPoolDeg(t *testing.T) {
	assert.Equal(t, int64(36000), PoolDeg(100, DegPerTT))
	assert.Equal(t, int64(180), PoolDeg(0.5, DegPerTT))
	// Fractional deg is truncated, never rounded up.
	assert.Equal(t, int64(36), PoolDeg(0.1001, DegPerTT))
	assert.Equal(t, int64(0), PoolDeg(0, DegPerTT))
}

func TestConvert_EmptyInput(t *testing.T) {
	assert.Empty(t, Convert(100, nil, DegPerTT))
}

func TestConvert_ExactSum(t *testing.T) {
	ws := []knu.Weighted{
		weighted("KNU-1", 0.333333),
		weighted("KNU-2", 0.333333),
		weighted("KNU-3", 0.333334),
	}

	allocations := Convert(100, ws, DegPerTT)
	require.Len(t, allocations, 3)
	assert.Equal(t, PoolDeg(100, DegPerTT), degSum(allocations))
}

func TestConvert_RemainderGoesToLastEntry(t *testing.T) {
	// 100 TT = 36000 deg split three ways: floor gives 12000 each with
	// no remainder, so force a ragged split instead.
	ws := []knu.Weighted{
		weighted("KNU-1", 0.1),
		weighted("KNU-2", 0.1),
		weighted("KNU-3", 0.8),
	}

	allocations := Convert(0.25, ws, DegPerTT) // 90 deg
	require.Len(t, allocations, 3)
	assert.Equal(t, int64(9), allocations[0].TokensDeg)
	assert.Equal(t, int64(9), allocations[1].TokensDeg)
	assert.Equal(t, int64(72), allocations[2].TokensDeg)
	assert.Equal(t, int64(90), degSum(allocations))
}

func TestConvert_ExactSum_Randomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(25)
		raw := make([]float64, n)
		var total float64
		for i := range raw {
			// Skew hard so some weights are near zero and one dominates.
			raw[i] = rng.ExpFloat64()
			total += raw[i]
		}

		ws := make([]knu.Weighted, n)
		for i := range ws {
			ws[i] = weighted(fmt.Sprintf("KNU-%d", i), raw[i]/total)
		}

		poolTT := rng.Float64() * 10000
		allocations := Convert(poolTT, ws, DegPerTT)
		assert.Equal(t, PoolDeg(poolTT, DegPerTT), degSum(allocations),
			"trial %d: pool %v TT over %d entries", trial, poolTT, n)
	}
}

func TestConvert_SingleEntryTakesWholePool(t *testing.T) {
	allocations := Convert(42, []knu.Weighted{weighted("KNU-1", 1.0)}, DegPerTT)
	require.Len(t, allocations, 1)
	assert.Equal(t, int64(15120), allocations[0].TokensDeg)
	assert.Equal(t, 42.0, allocations[0].TokensTT)
	assert.Empty(t, allocations[0].TxID)
}

func TestConvert_TTAmountMatchesDeg(t *testing.T) {
	ws := []knu.Weighted{
		weighted("KNU-1", 0.6),
		weighted("KNU-2", 0.4),
	}

	allocations := Convert(1, ws, DegPerTT) // 360 deg
	for _, a := range allocations {
		assert.Equal(t, float64(a.TokensDeg)/float64(DegPerTT), a.TokensTT)
	}
}

func TestSortByID(t *testing.T) {
	ws := []knu.Weighted{
		weighted("KNU-3", 0.2),
		weighted("KNU-1", 0.5),
		weighted("KNU-2", 0.3),
	}

	SortByID(ws)
	assert.Equal(t, "KNU-1", ws[0].Entry.ID)
	assert.Equal(t, "KNU-2", ws[1].Entry.ID)
	assert.Equal(t, "KNU-3", ws[2].Entry.ID)
}
