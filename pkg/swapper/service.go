package swapper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/speedrun-hq/swapper/pkg/alert"
	"github.com/speedrun-hq/swapper/pkg/circuitbreaker"
	"github.com/speedrun-hq/swapper/pkg/config"
	"github.com/speedrun-hq/swapper/pkg/logger"
)

// Chain is everything the worker needs from the chain query service
type Chain interface {
	HeightSource
	BalanceSource
	Broadcaster
	TxFinder
}

// CounterStore is a Counter that can report its availability
type CounterStore interface {
	Counter
	Ping(ctx context.Context) error
}

// Status is a snapshot of the worker served on the status endpoint
type Status struct {
	Address         string     `json:"address"`
	FromDenom       string     `json:"from_denom"`
	ToDenom         string     `json:"to_denom"`
	Interval        int64      `json:"interval"`
	AmountPerPeriod string     `json:"amount_per_period"`
	LastActedHeight int64      `json:"last_acted_height"`
	LatestHeight    int64      `json:"latest_height,omitempty"`
	Cycles          uint64     `json:"cycles"`
	LastOutcome     string     `json:"last_outcome,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	LastErrorKind   string     `json:"last_error_kind,omitempty"`
	LastCycleAt     *time.Time `json:"last_cycle_at,omitempty"`
	LastTxHash      string     `json:"last_tx_hash,omitempty"`
	LastTxHeight    int64      `json:"last_tx_height,omitempty"`
	CircuitBreaker  string     `json:"circuit_breaker"`
	CircuitOpenedAt *time.Time `json:"circuit_opened_at,omitempty"`
}

// Service wires the swap steps together and runs them under a scheduler
type Service struct {
	chain     Chain
	counters  CounterStore
	signer    Signer
	gate      *HeightGate
	cycle     *Cycle
	scheduler *Scheduler
	breaker   *circuitbreaker.CircuitBreaker
	swap      config.SwapConfig
	logger    logger.Logger

	mu          sync.RWMutex
	cycles      uint64
	lastOutcome string
	lastError   error
	lastCycleAt time.Time
}

// NewService creates the swapper service
func NewService(cfg *config.Config, chain Chain, counters CounterStore, signer Signer, sink alert.Sink, log logger.Logger) *Service {
	breaker := circuitbreaker.NewCircuitBreaker(
		cfg.CircuitBreaker.Enabled,
		cfg.CircuitBreaker.Threshold,
		cfg.CircuitBreaker.WindowDuration,
		cfg.CircuitBreaker.ResetTimeout,
		log.Named(logger.Scheduler),
	)

	gate := NewHeightGate(counters, cfg.Swap.Interval, log.Named(logger.Gate))
	probe := NewBalanceProbe(chain, signer.Address(), cfg.Swap.FromDenom, log.Named(logger.Probe))
	submitter := NewSubmitter(chain, log.Named(logger.Submit))
	poller := NewConfirmationPoller(chain, chain, PollerConfig{
		Interval:   cfg.Timing.ConfirmPollInterval,
		IndexDelay: cfg.Timing.ConfirmIndexDelay,
		Timeout:    cfg.Timing.ConfirmTimeout,
	}, log.Named(logger.Confirm))

	cycle := NewCycle(chain, gate, probe, signer, submitter, poller, SwapParams{
		FromDenom:       cfg.Swap.FromDenom,
		ToDenom:         cfg.Swap.ToDenom,
		AmountPerPeriod: cfg.Swap.AmountPerPeriod,
	}, log.Named(logger.Scheduler))

	s := &Service{
		chain:    chain,
		counters: counters,
		signer:   signer,
		gate:     gate,
		cycle:    cycle,
		breaker:  breaker,
		swap:     cfg.Swap,
		logger:   log,
	}
	s.scheduler = NewScheduler(cycle, sink, breaker, cfg.Timing.CycleDelay, log.Named(logger.Scheduler))
	s.scheduler.observe = s.record

	return s
}

// Run blocks until ctx is cancelled
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("Swapping up to %s%s into %s every %d blocks for %s",
		s.swap.AmountPerPeriod.String(), s.swap.FromDenom, s.swap.ToDenom, s.swap.Interval, s.signer.Address())
	s.scheduler.Run(ctx)
}

// CircuitBreaker returns the breaker guarding the scheduler
func (s *Service) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return s.breaker
}

// Ready checks that the counter store and the chain are reachable
func (s *Service) Ready(ctx context.Context) error {
	if err := s.counters.Ping(ctx); err != nil {
		return fmt.Errorf("counter store unavailable: %w", err)
	}
	if _, err := s.chain.LatestHeight(ctx); err != nil {
		return fmt.Errorf("chain unavailable: %w", err)
	}
	return nil
}

// Status returns a snapshot of the worker. Chain and store reads are best effort.
func (s *Service) Status(ctx context.Context) Status {
	status := Status{
		Address:         s.signer.Address(),
		FromDenom:       s.swap.FromDenom,
		ToDenom:         s.swap.ToDenom,
		Interval:        s.swap.Interval,
		AmountPerPeriod: s.swap.AmountPerPeriod.String(),
		CircuitBreaker:  "closed",
	}

	switch {
	case !s.breaker.IsEnabled():
		status.CircuitBreaker = "disabled"
	case s.breaker.IsOpen():
		status.CircuitBreaker = "open"
		openedAt := s.breaker.GetTripTime()
		status.CircuitOpenedAt = &openedAt
	}

	if lastActed, err := s.gate.LastActed(ctx); err == nil {
		status.LastActedHeight = lastActed
	}
	if height, err := s.chain.LatestHeight(ctx); err == nil {
		status.LatestHeight = height
	}
	if confirmation, ok := s.cycle.LastConfirmation(); ok {
		status.LastTxHash = confirmation.Hash
		status.LastTxHeight = confirmation.Height
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	status.Cycles = s.cycles
	status.LastOutcome = s.lastOutcome
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
		status.LastErrorKind = Classify(s.lastError)
	}
	if !s.lastCycleAt.IsZero() {
		at := s.lastCycleAt
		status.LastCycleAt = &at
	}
	return status
}

func (s *Service) record(outcome Outcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cycles++
	s.lastCycleAt = time.Now()
	if err != nil {
		s.lastOutcome = "error"
		s.lastError = err
		return
	}
	s.lastOutcome = outcome.String()
	// skipped heights keep the last failure visible until something happens
	if outcome != OutcomeNotDue {
		s.lastError = nil
	}
}
