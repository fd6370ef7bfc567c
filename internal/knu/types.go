// Package knu defines the core domain types for KNU reward distribution:
// submitted knowledge units, per-KNOT prize pools, and the allocations
// produced by a distribution run.
package knu

// Status is the review state of a KNU submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusMerged   Status = "merged"
	StatusRejected Status = "rejected"
)

// Entry is a single Knowledge Unit submission. Entries are immutable once
// loaded; the engine never writes them back.
type Entry struct {
	ID              string   `json:"knu_id"`       // e.g. "KNU-K06-00-001"
	KnotID          string   `json:"knot_id"`      // pool this entry competes in, e.g. "K06"
	Owner           string   `json:"owner"`        // account receiving the reward
	Effort          float64  `json:"E_pred"`       // predicted effort (story points/hours)
	ImpactPrimary   float64  `json:"dR_primary"`   // direct residue reduction
	ImpactSpillover float64  `json:"dR_adj_sum"`   // pre-aggregated spillover from adjacent KNOTs
	Status          Status   `json:"status"`       // pending, accepted, merged, rejected
	Artifacts       []string `json:"artifacts"`    // links to evidence artifacts
	ValidatedBy     string   `json:"validated_by"` // KNOT owner who validated
	ValidatedAt     string   `json:"validated_at"` // ISO-8601 timestamp, empty if unvalidated
}

// Pool is the prize pool configuration for one KNOT.
type Pool struct {
	KnotID      string
	PoolTT      float64 // total TT to distribute
	Description string
}

// Params are the global weighting parameters. Alpha blends effort against
// impact; LambdaSpillover scales spillover impact relative to direct impact.
type Params struct {
	Alpha           float64
	LambdaSpillover float64
}

// DefaultParams returns the standard weighting parameters: 30% effort,
// 70% impact, spillover worth half of direct impact.
func DefaultParams() Params {
	return Params{Alpha: 0.30, LambdaSpillover: 0.50}
}

// Weighted pairs an entry with its normalized distribution weight.
// For a non-empty eligible set, weights across the batch sum to 1.0.
type Weighted struct {
	Entry  Entry
	Weight float64
}

// Allocation is the result of distributing pool tokens to one entry.
// TxID stays empty until the reward has been executed externally.
type Allocation struct {
	KnuID     string  `json:"knu_id"`
	Owner     string  `json:"owner"`
	Weight    float64 `json:"weight"`
	TokensTT  float64 `json:"tokens_tt"`
	TokensDeg int64   `json:"tokens_deg"`
	TxID      string  `json:"tx_id,omitempty"`
}

// Executed reports whether the allocation's reward call completed.
func (a Allocation) Executed() bool {
	return a.TxID != ""
}
