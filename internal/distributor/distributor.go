// Package distributor sequences a distribution run: eligibility filtering,
// weight calculation, deg conversion, and external reward execution.
package distributor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teknia/knud/internal/allocation"
	"github.com/teknia/knud/internal/config"
	"github.com/teknia/knud/internal/eligibility"
	"github.com/teknia/knud/internal/knu"
	"github.com/teknia/knud/internal/reward"
	"github.com/teknia/knud/internal/weights"
)

// Sentinel error kinds. Both abort a run before any external call.
var (
	ErrNoEligible = errors.New("no eligible KNUs for distribution")
	ErrNoSignal   = errors.New("no distributable signal in batch")
)

// Skip records an entry excluded from the run and why.
type Skip struct {
	KnuID  string
	Reason string
}

// Failure records a single payout that could not be completed. The rest
// of the batch is unaffected.
type Failure struct {
	KnuID    string
	Owner    string
	TokensTT float64
	Err      error
}

// Result is the outcome of one distribution run. Allocations holds every
// allocation in execution order; in a live run the executed ones carry a
// transaction id and the failed ones an empty one.
type Result struct {
	RunID       string
	Pool        knu.Pool
	Params      knu.Params
	Weighted    []knu.Weighted
	Allocations []knu.Allocation
	Skipped     []Skip
	// ExecFailures are payouts where no funds moved.
	ExecFailures []Failure
	// LedgerFailures are payouts where funds moved but the local ledger
	// append failed; these allocations still count as executed.
	LedgerFailures []Failure
	DryRun         bool
}

// Option configures a Distributor.
type Option func(*Distributor)

// WithCanonicalOrder sorts eligible entries by knu_id before conversion.
// The rounding remainder lands on the last entry, so this makes results
// reproducible regardless of input file ordering.
func WithCanonicalOrder() Option {
	return func(d *Distributor) { d.canonical = true }
}

// Distributor runs the distribution pipeline for one KNOT at a time.
// It holds no mutable state between runs; the ledger behind the executor
// is the only thing a run persists.
type Distributor struct {
	cfg       *config.Config
	exec      reward.Executor
	log       zerolog.Logger
	canonical bool
}

// New creates a Distributor. The executor is only invoked for live runs.
func New(cfg *config.Config, exec reward.Executor, log zerolog.Logger, opts ...Option) *Distributor {
	d := &Distributor{
		cfg:  cfg,
		exec: exec,
		log:  log.With().Str("component", "distributor").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Distribute runs the full pipeline for knotID over the given batch.
// Ineligible entries and entries belonging to other KNOTs are skipped with
// a reported reason, never merged in. A run with nothing to distribute
// fails before any side effect. In dry-run mode every step executes
// except the external reward calls and ledger writes.
//
// A single payout failure does not abort the batch: it is recorded and
// the remaining allocations still execute in order.
func (d *Distributor) Distribute(ctx context.Context, knotID string, entries []knu.Entry, dryRun bool) (*Result, error) {
	pool, err := d.cfg.Pool(knotID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  uuid.New().String(),
		Pool:   pool,
		Params: d.cfg.Params(),
		DryRun: dryRun,
	}
	log := d.log.With().Str("run_id", result.RunID).Str("knot_id", knotID).Logger()

	// Adjacency is informational here: spillover values on the entries
	// were already aggregated with these weights upstream.
	if neighbors := d.cfg.AdjacencyFor(knotID); len(neighbors) > 0 {
		log.Debug().Interface("adjacency", neighbors).Msg("spillover neighbor weights")
	}

	eligible := d.filter(knotID, entries, result, log)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: KNOT %s", ErrNoEligible, knotID)
	}

	result.Weighted = weights.Compute(eligible, result.Params)
	if !hasSignal(result.Weighted) {
		// Both total effort and total impact are zero: there is nothing
		// to apportion the pool by, and allocating it all to the last
		// entry would be an artifact of the remainder rule.
		return nil, fmt.Errorf("%w: KNOT %s", ErrNoSignal, knotID)
	}

	if d.canonical {
		allocation.SortByID(result.Weighted)
	}
	result.Allocations = allocation.Convert(pool.PoolTT, result.Weighted, allocation.DegPerTT)

	if dryRun {
		log.Info().Int("allocations", len(result.Allocations)).Msg("dry run complete")
		return result, nil
	}

	d.execute(ctx, knotID, result, log)

	log.Info().
		Int("allocations", len(result.Allocations)).
		Int("exec_failures", len(result.ExecFailures)).
		Int("ledger_failures", len(result.LedgerFailures)).
		Msg("distribution complete")
	return result, nil
}

// filter keeps entries that pass the eligibility policy and belong to the
// requested KNOT, preserving input order.
func (d *Distributor) filter(knotID string, entries []knu.Entry, result *Result, log zerolog.Logger) []knu.Entry {
	policy := d.cfg.Policy()

	var eligible []knu.Entry
	for _, entry := range entries {
		if ok, reason := eligibility.Check(entry, policy); !ok {
			result.Skipped = append(result.Skipped, Skip{KnuID: entry.ID, Reason: reason})
			log.Warn().Str("knu_id", entry.ID).Str("reason", reason).Msg("skipping ineligible entry")
			continue
		}
		if entry.KnotID != knotID {
			reason := fmt.Sprintf("belongs to %s, not %s", entry.KnotID, knotID)
			result.Skipped = append(result.Skipped, Skip{KnuID: entry.ID, Reason: reason})
			log.Warn().Str("knu_id", entry.ID).Str("reason", reason).Msg("skipping entry from other KNOT")
			continue
		}
		eligible = append(eligible, entry)
	}
	return eligible
}

// execute issues rewards strictly sequentially, in allocation order, so
// ledger rows land in the same deterministic order as the allocations.
func (d *Distributor) execute(ctx context.Context, knotID string, result *Result, log zerolog.Logger) {
	for i := range result.Allocations {
		alloc := &result.Allocations[i]
		req := reward.Request{
			KnotID:     knotID,
			Entry:      result.Weighted[i].Entry,
			Allocation: *alloc,
		}

		txID, err := d.exec.Execute(ctx, req)
		if err != nil {
			failure := Failure{
				KnuID:    alloc.KnuID,
				Owner:    alloc.Owner,
				TokensTT: alloc.TokensTT,
				Err:      err,
			}
			if errors.Is(err, reward.ErrLedgerAppend) {
				// Funds moved; the allocation is executed even though
				// the local record is missing.
				alloc.TxID = txID
				result.LedgerFailures = append(result.LedgerFailures, failure)
				continue
			}
			result.ExecFailures = append(result.ExecFailures, failure)
			log.Error().
				Str("knu_id", alloc.KnuID).
				Str("owner", alloc.Owner).
				Float64("tokens_tt", alloc.TokensTT).
				Err(err).
				Msg("reward execution failed")
			continue
		}

		alloc.TxID = txID
		log.Info().
			Str("knu_id", alloc.KnuID).
			Str("owner", alloc.Owner).
			Float64("tokens_tt", alloc.TokensTT).
			Int64("tokens_deg", alloc.TokensDeg).
			Str("tx_id", txID).
			Msg("reward executed")
	}
}

// Executed returns the allocations whose reward call completed.
func (r *Result) Executed() []knu.Allocation {
	var executed []knu.Allocation
	for _, a := range r.Allocations {
		if a.Executed() {
			executed = append(executed, a)
		}
	}
	return executed
}

func hasSignal(weighted []knu.Weighted) bool {
	for _, w := range weighted {
		if w.Weight != 0 {
			return true
		}
	}
	return false
}
