// Package report projects a distribution result into its external forms:
// a structured JSON document and a human-readable console table. Both are
// pure projections of in-memory state, never ledger writes.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/teknia/knud/internal/distributor"
)

// Parameters echoes the weighting parameters a run used.
type Parameters struct {
	Alpha           float64 `json:"alpha"`
	LambdaSpillover float64 `json:"lambda_spillover"`
}

// Line is one entry's share of the pool.
type Line struct {
	KnuID           string  `json:"knu_id"`
	Owner           string  `json:"owner"`
	Effort          float64 `json:"effort"`
	ImpactPrimary   float64 `json:"impact_primary"`
	ImpactSpillover float64 `json:"impact_spillover"`
	Weight          float64 `json:"weight"`
	TokensTT        float64 `json:"tokens_tt"`
	TokensDeg       int64   `json:"tokens_deg"`
	TxID            string  `json:"tx_id,omitempty"`
}

// Summary aggregates the run.
type Summary struct {
	TotalKnus   int     `json:"total_knus"`
	TotalWeight float64 `json:"total_weight"`
	TotalTT     float64 `json:"total_tt"`
	TotalDeg    int64   `json:"total_deg"`
}

// Report is the structured summary for one KNOT distribution run.
type Report struct {
	RunID           string     `json:"run_id"`
	KnotID          string     `json:"knot_id"`
	PoolTT          float64    `json:"pool_tt"`
	PoolDescription string     `json:"pool_description,omitempty"`
	DryRun          bool       `json:"dry_run,omitempty"`
	Parameters      Parameters `json:"parameters"`
	Distributions   []Line     `json:"distributions"`
	Summary         Summary    `json:"summary"`
}

// Build projects a distribution result into a Report.
func Build(result *distributor.Result) Report {
	r := Report{
		RunID:           result.RunID,
		KnotID:          result.Pool.KnotID,
		PoolTT:          result.Pool.PoolTT,
		PoolDescription: result.Pool.Description,
		DryRun:          result.DryRun,
		Parameters: Parameters{
			Alpha:           result.Params.Alpha,
			LambdaSpillover: result.Params.LambdaSpillover,
		},
		Distributions: make([]Line, len(result.Allocations)),
	}

	for i, alloc := range result.Allocations {
		entry := result.Weighted[i].Entry
		r.Distributions[i] = Line{
			KnuID:           alloc.KnuID,
			Owner:           alloc.Owner,
			Effort:          entry.Effort,
			ImpactPrimary:   entry.ImpactPrimary,
			ImpactSpillover: entry.ImpactSpillover,
			Weight:          alloc.Weight,
			TokensTT:        alloc.TokensTT,
			TokensDeg:       alloc.TokensDeg,
			TxID:            alloc.TxID,
		}
		r.Summary.TotalWeight += alloc.Weight
		r.Summary.TotalTT += alloc.TokensTT
		r.Summary.TotalDeg += alloc.TokensDeg
	}
	r.Summary.TotalKnus = len(result.Allocations)
	return r
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Save writes the report to a file, creating parent directories as needed.
func (r Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return r.WriteJSON(f)
}

// WriteTable writes the per-entry breakdown as a formatted table.
func (r Report) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "%-22s %-15s %10s %10s %12s %12s\n",
		"KNU", "OWNER", "EFFORT", "IMPACT", "WEIGHT", "TT")
	fmt.Fprintf(w, "%-22s %-15s %10s %10s %12s %12s\n",
		"----------------------", "---------------", "----------", "----------", "------------", "------------")

	for _, line := range r.Distributions {
		fmt.Fprintf(w, "%-22s %-15s %10.2f %10.2f %12.4f %12.2f\n",
			line.KnuID, line.Owner, line.Effort, line.ImpactPrimary, line.Weight, line.TokensTT)
	}

	fmt.Fprintf(w, "\nTotal: %d KNUs, weight %.6f, %.2f TT (%d deg)\n",
		r.Summary.TotalKnus, r.Summary.TotalWeight, r.Summary.TotalTT, r.Summary.TotalDeg)
}
