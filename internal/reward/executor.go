// Package reward drives the external tek-tokens CLI to issue TT rewards
// and records every executed payout in the ledger.
package reward

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/teknia/knud/internal/knu"
	"github.com/teknia/knud/internal/ledger"
)

// Sentinel error kinds. ErrLedgerAppend means the external reward call
// succeeded (funds moved) but the local ledger write failed; callers must
// not treat it like an execution failure.
var (
	ErrExecution       = errors.New("reward execution failed")
	ErrNoTransactionID = errors.New("no transaction id in reward output")
	ErrLedgerAppend    = errors.New("ledger append failed after reward")
)

// txPattern matches the transaction identifier tek-tokens prints on success.
var txPattern = regexp.MustCompile(`TX-\d{6}`)

// Request is everything the executor needs for one payout.
type Request struct {
	KnotID     string
	Entry      knu.Entry
	Allocation knu.Allocation
}

// Executor issues a single reward and returns its transaction id.
type Executor interface {
	Execute(ctx context.Context, req Request) (string, error)
}

// CLIExecutor runs the tek-tokens binary once per payout, parses the
// transaction id from its stdout, and appends a ledger row.
type CLIExecutor struct {
	binary string
	sink   ledger.Sink
	log    zerolog.Logger
	now    func() time.Time
}

// NewCLI returns an executor that shells out to the given tek-tokens binary.
func NewCLI(binary string, sink ledger.Sink, log zerolog.Logger) *CLIExecutor {
	return &CLIExecutor{
		binary: binary,
		sink:   sink,
		log:    log.With().Str("component", "reward").Logger(),
		now:    time.Now,
	}
}

// Execute issues the reward as `tek-tokens reward --to <owner> --tt <amount>`.
// A non-zero exit status, or output with no transaction id, fails the
// payout. On a parsed success the ledger row is appended before returning;
// if that append fails the transaction id is still returned alongside an
// ErrLedgerAppend so the caller can surface the inconsistency.
func (e *CLIExecutor) Execute(ctx context.Context, req Request) (string, error) {
	amount := strconv.FormatFloat(req.Allocation.TokensTT, 'f', -1, 64)
	cmd := exec.CommandContext(ctx, e.binary, "reward", "--to", req.Allocation.Owner, "--tt", amount)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.log.Debug().
		Str("knu_id", req.Allocation.KnuID).
		Str("owner", req.Allocation.Owner).
		Str("tt", amount).
		Msg("executing reward")

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s for %s: %v: %s",
			ErrExecution, e.binary, req.Allocation.Owner, err, bytes.TrimSpace(stderr.Bytes()))
	}

	txID := txPattern.FindString(stdout.String())
	if txID == "" {
		// "Succeeded but unparseable" is still a failure: without a
		// transaction id the payout cannot be audited or reconciled.
		return "", fmt.Errorf("%w: output: %q", ErrNoTransactionID, stdout.String())
	}

	if err := e.sink.Append(e.row(req, txID)); err != nil {
		e.log.Warn().
			Str("knu_id", req.Allocation.KnuID).
			Str("tx_id", txID).
			Err(err).
			Msg("reward executed but ledger append failed")
		return txID, fmt.Errorf("%w: tx %s: %v", ErrLedgerAppend, txID, err)
	}

	return txID, nil
}

func (e *CLIExecutor) row(req Request, txID string) ledger.Row {
	return ledger.Row{
		Timestamp:       e.now().UTC().Format(time.RFC3339),
		KnotID:          req.KnotID,
		KnuID:           req.Entry.ID,
		Owner:           req.Entry.Owner,
		Effort:          req.Entry.Effort,
		ImpactPrimary:   req.Entry.ImpactPrimary,
		ImpactSpillover: req.Entry.ImpactSpillover,
		Weight:          req.Allocation.Weight,
		TokensTT:        req.Allocation.TokensTT,
		TokensDeg:       req.Allocation.TokensDeg,
		TxID:            txID,
		ValidatedBy:     req.Entry.ValidatedBy,
	}
}
