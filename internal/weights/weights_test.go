package weights

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teknia/knud/internal/knu"
)

func entry(id string, effort, primary, spillover float64) knu.Entry {
	return knu.Entry{
		ID:              id,
		KnotID:          "K06",
		Owner:           "owner-" + id,
		Effort:          effort,
		ImpactPrimary:   primary,
		ImpactSpillover: spillover,
	}
}

func weightSum(weighted []knu.Weighted) float64 {
	var total float64
	for _, w := range weighted {
		total += w.Weight
	}
	return total
}

func TestCompute_EmptyInput(t *testing.T) {
	result := Compute(nil, knu.DefaultParams())
	assert.Empty(t, result)
}

func TestCompute_WeightsSumToOne(t *testing.T) {
	entries := []knu.Entry{
		entry("KNU-1", 8, 50, 10),
		entry("KNU-2", 2, 30, 0),
		entry("KNU-3", 5, 5, 25),
	}

	weighted := Compute(entries, knu.DefaultParams())
	require.Len(t, weighted, 3)
	assert.InDelta(t, 1.0, weightSum(weighted), 1e-6)
}

func TestCompute_WeightsSumToOne_Randomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(20)
		entries := make([]knu.Entry, n)
		for i := range entries {
			entries[i] = entry(fmt.Sprintf("KNU-%d", i), rng.Float64()*20, rng.Float64()*100, rng.Float64()*50)
		}

		weighted := Compute(entries, knu.DefaultParams())
		assert.InDelta(t, 1.0, weightSum(weighted), 1e-6)
	}
}

func TestCompute_ZeroEffortFallsBackToImpact(t *testing.T) {
	// With no effort anywhere the blend reduces to impact's normalized
	// share: impacts 50 and 30 yield weights 0.625 and 0.375.
	entries := []knu.Entry{
		entry("KNU-1", 0, 50, 0),
		entry("KNU-2", 0, 30, 0),
	}

	weighted := Compute(entries, knu.DefaultParams())
	require.Len(t, weighted, 2)
	assert.InDelta(t, 0.625, weighted[0].Weight, 1e-2)
	assert.InDelta(t, 0.375, weighted[1].Weight, 1e-2)
}

func TestCompute_ZeroImpactFallsBackToEffort(t *testing.T) {
	// Efforts 8 and 2 with no impact anywhere yield weights 0.8 and 0.2.
	entries := []knu.Entry{
		entry("KNU-1", 8, 0, 0),
		entry("KNU-2", 2, 0, 0),
	}

	weighted := Compute(entries, knu.DefaultParams())
	require.Len(t, weighted, 2)
	assert.InDelta(t, 0.8, weighted[0].Weight, 1e-6)
	assert.InDelta(t, 0.2, weighted[1].Weight, 1e-6)
}

func TestCompute_ZeroSignalBatch(t *testing.T) {
	// No effort and no impact anywhere: no distributable signal, all
	// weights stay zero rather than dividing by zero.
	entries := []knu.Entry{
		entry("KNU-1", 0, 0, 0),
		entry("KNU-2", 0, 0, 0),
	}

	weighted := Compute(entries, knu.DefaultParams())
	require.Len(t, weighted, 2)
	assert.Zero(t, weighted[0].Weight)
	assert.Zero(t, weighted[1].Weight)
}

func TestCompute_AlphaShiftsWeightTowardEffort(t *testing.T) {
	// KNU-1 has the higher effort, KNU-2 the higher impact. Raising alpha
	// must move weight toward KNU-1.
	entries := []knu.Entry{
		entry("KNU-1", 10, 10, 0),
		entry("KNU-2", 2, 80, 0),
	}

	low := Compute(entries, knu.Params{Alpha: 0.30, LambdaSpillover: 0.50})
	high := Compute(entries, knu.Params{Alpha: 0.80, LambdaSpillover: 0.50})

	assert.Greater(t, high[0].Weight, low[0].Weight)
	assert.Less(t, high[1].Weight, low[1].Weight)
}

func TestCompute_LambdaRewardsSpillover(t *testing.T) {
	// Identical entries except KNU-1 carries spillover. At lambda zero
	// they split evenly; any positive lambda favors KNU-1.
	entries := []knu.Entry{
		entry("KNU-1", 5, 40, 20),
		entry("KNU-2", 5, 40, 0),
	}

	flat := Compute(entries, knu.Params{Alpha: 0.30, LambdaSpillover: 0})
	assert.InDelta(t, flat[0].Weight, flat[1].Weight, 1e-9)

	spill := Compute(entries, knu.Params{Alpha: 0.30, LambdaSpillover: 0.50})
	assert.Greater(t, spill[0].Weight, spill[1].Weight)
}

func TestCompute_SingleEntryGetsFullWeight(t *testing.T) {
	weighted := Compute([]knu.Entry{entry("KNU-1", 3, 12, 4)}, knu.DefaultParams())
	require.Len(t, weighted, 1)
	assert.InDelta(t, 1.0, weighted[0].Weight, 1e-9)
}

func TestEffectiveImpact(t *testing.T) {
	e := entry("KNU-1", 0, 40, 20)
	assert.Equal(t, 50.0, EffectiveImpact(e, 0.5))
	assert.Equal(t, 40.0, EffectiveImpact(e, 0))
}

func TestCompute_PreservesInputOrder(t *testing.T) {
	entries := []knu.Entry{
		entry("KNU-3", 1, 1, 0),
		entry("KNU-1", 2, 2, 0),
		entry("KNU-2", 3, 3, 0),
	}

	weighted := Compute(entries, knu.DefaultParams())
	require.Len(t, weighted, 3)
	assert.Equal(t, "KNU-3", weighted[0].Entry.ID)
	assert.Equal(t, "KNU-1", weighted[1].Entry.ID)
	assert.Equal(t, "KNU-2", weighted[2].Entry.ID)
}
