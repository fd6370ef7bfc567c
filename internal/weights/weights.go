// Package weights computes normalized distribution weights for a batch of
// eligible KNU entries using the two-factor blend
//
//	w_i = α·Ê_i + (1−α)·Î_i
//
// where Ê is effort normalized over the batch and Î is effective impact
// (direct + λ·spillover) normalized over the batch.
package weights

import (
	"gonum.org/v1/gonum/floats"

	"github.com/teknia/knud/internal/knu"
)

// EffectiveImpact returns the entry's direct impact plus its spillover
// impact scaled by lambda. The spillover value carried on the entry is
// authoritative; adjacency weights are applied upstream, never here.
func EffectiveImpact(entry knu.Entry, lambda float64) float64 {
	return entry.ImpactPrimary + lambda*entry.ImpactSpillover
}

// Compute returns the distribution weight for every entry, in input order.
// The entries must already be eligible and belong to one KNOT. For a
// non-empty batch the weights sum to 1.0 up to floating-point error,
// unless both total effort and total impact are zero, in which case every
// weight is zero and the caller must treat the batch as having no
// distributable signal.
//
// An empty batch returns an empty result, not an error.
func Compute(entries []knu.Entry, params knu.Params) []knu.Weighted {
	if len(entries) == 0 {
		return nil
	}

	efforts := make([]float64, len(entries))
	impacts := make([]float64, len(entries))
	for i, e := range entries {
		efforts[i] = e.Effort
		impacts[i] = EffectiveImpact(e, params.LambdaSpillover)
	}

	// Normalize each signal over the batch. A zero total means that
	// signal contributes nothing to the blend, by design.
	normalize(efforts)
	normalize(impacts)

	w := make([]float64, len(entries))
	for i := range entries {
		w[i] = params.Alpha*efforts[i] + (1-params.Alpha)*impacts[i]
	}

	// Renormalize so the output sums to exactly 1.0 up to floating-point
	// error. If both signals were zero the weights stay all zero.
	normalize(w)

	weighted := make([]knu.Weighted, len(entries))
	for i, e := range entries {
		weighted[i] = knu.Weighted{Entry: e, Weight: w[i]}
	}
	return weighted
}

// normalize scales the values to sum to 1.0 in place, or leaves them
// untouched when the total is not positive.
func normalize(values []float64) {
	total := floats.Sum(values)
	if total > 0 {
		floats.Scale(1/total, values)
	} else {
		for i := range values {
			values[i] = 0
		}
	}
}
