package swapper

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
	"github.com/speedrun-hq/swapper/pkg/models"
)

// Outcome is how a cycle ended when it did not fail
type Outcome int

const (
	// OutcomeNotDue means the current height does not qualify
	OutcomeNotDue Outcome = iota
	// OutcomeZeroBalance means the height qualified but there was nothing to swap
	OutcomeZeroBalance
	// OutcomeConfirmed means a swap was submitted and included successfully
	OutcomeConfirmed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotDue:
		return "not_due"
	case OutcomeZeroBalance:
		return "zero_balance"
	case OutcomeConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Signer produces signed swap transactions for a single account
type Signer interface {
	Address() string
	SignSwap(ctx context.Context, req models.SwapRequest) (models.SignedTx, error)
}

// SwapParams describes the pair and the per-period cap
type SwapParams struct {
	FromDenom       string
	ToDenom         string
	AmountPerPeriod *big.Int
}

// Cycle runs the gate, probe, build, sign, submit and confirm steps once
type Cycle struct {
	heights   HeightSource
	gate      *HeightGate
	probe     *BalanceProbe
	signer    Signer
	submitter *Submitter
	poller    *ConfirmationPoller
	params    SwapParams
	logger    logger.Logger

	mu   sync.Mutex
	last *models.Confirmation
}

// NewCycle assembles a cycle from its steps
func NewCycle(
	heights HeightSource,
	gate *HeightGate,
	probe *BalanceProbe,
	signer Signer,
	submitter *Submitter,
	poller *ConfirmationPoller,
	params SwapParams,
	log logger.Logger,
) *Cycle {
	return &Cycle{
		heights:   heights,
		gate:      gate,
		probe:     probe,
		signer:    signer,
		submitter: submitter,
		poller:    poller,
		params:    params,
		logger:    log,
	}
}

// Run executes one cycle. Once the gate fires the period is spent, whatever happens next.
func (c *Cycle) Run(ctx context.Context) (Outcome, error) {
	id := uuid.NewString()[:8]

	height, err := c.heights.LatestHeight(ctx)
	if err != nil {
		return OutcomeNotDue, fmt.Errorf("failed to load block height: %w", err)
	}
	metrics.ChainHeight.Set(float64(height))

	acted, err := c.gate.Acquire(ctx, height)
	if err != nil {
		return OutcomeNotDue, err
	}
	if !acted {
		return OutcomeNotDue, nil
	}

	c.logger.Info("[%s] Height %d qualifies for a swap of %s into %s", id, height, c.params.FromDenom, c.params.ToDenom)

	balance, err := c.probe.Balance(ctx)
	if err != nil {
		return OutcomeNotDue, err
	}
	if balance.Sign() == 0 {
		c.logger.Info("[%s] No %s to swap, skipping period at height %d", id, c.params.FromDenom, height)
		return OutcomeZeroBalance, nil
	}

	req, err := BuildSwapRequest(c.signer.Address(), balance, c.params.AmountPerPeriod, c.params.FromDenom, c.params.ToDenom)
	if err != nil {
		return OutcomeNotDue, err
	}

	signed, err := c.signer.SignSwap(ctx, req)
	if err != nil {
		return OutcomeNotDue, &SigningError{Err: err}
	}

	c.logger.Info("[%s] Swapping %s into %s (balance %s%s)", id, req.OfferCoin.String(), req.AskDenom, balance.String(), c.params.FromDenom)

	hash, err := c.submitter.Submit(ctx, signed)
	if err != nil {
		return OutcomeNotDue, err
	}

	confirmation, err := c.poller.Wait(ctx, hash)
	if err != nil {
		var failed *TxFailedError
		var timeout *ConfirmTimeoutError
		switch {
		case errors.As(err, &failed):
			metrics.SwapsTotal.WithLabelValues("failed").Inc()
		case errors.As(err, &timeout):
			metrics.SwapsTotal.WithLabelValues("timeout").Inc()
		}
		return OutcomeNotDue, err
	}

	metrics.SwapsTotal.WithLabelValues("confirmed").Inc()
	amount, _ := new(big.Float).SetInt(req.OfferCoin.Amount).Float64()
	metrics.SwappedAmount.WithLabelValues(req.OfferCoin.Denom).Add(amount)

	c.mu.Lock()
	c.last = &confirmation
	c.mu.Unlock()

	c.logger.Notice("[%s] Tx Broadcasted => hash: %s, height: %d", id, confirmation.Hash, confirmation.Height)
	return OutcomeConfirmed, nil
}

// Due reports whether the latest height qualifies, without recording it or touching the account
func (c *Cycle) Due(ctx context.Context) (bool, error) {
	height, err := c.heights.LatestHeight(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load block height: %w", err)
	}
	metrics.ChainHeight.Set(float64(height))
	return c.gate.Due(ctx, height)
}

// LastConfirmation returns the most recent confirmed swap, if any
func (c *Cycle) LastConfirmation() (models.Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return models.Confirmation{}, false
	}
	return *c.last, true
}

// timed runs fn and records its duration under the outcome label
func timed(fn func() (Outcome, error)) (Outcome, error) {
	start := time.Now()
	outcome, err := fn()
	label := outcome.String()
	if err != nil {
		label = "error"
	}
	metrics.CycleDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	metrics.CyclesTotal.WithLabelValues(label).Inc()
	return outcome, err
}
