package swapper

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/speedrun-hq/swapper/pkg/alert"
	"github.com/speedrun-hq/swapper/pkg/circuitbreaker"
	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
)

// CycleRunner runs a single cycle
type CycleRunner interface {
	Run(ctx context.Context) (Outcome, error)
	// Due reports whether the next Run would act, with no side effects
	Due(ctx context.Context) (bool, error)
}

// Scheduler runs cycles back to back until its context is cancelled.
// Failed cycles are logged and alerted, they never stop the loop.
// While the breaker is open the scheduler keeps watching heights at the normal
// delay and only runs a full cycle when a height qualifies, so no period is skipped.
type Scheduler struct {
	cycle   CycleRunner
	sink    alert.Sink
	breaker *circuitbreaker.CircuitBreaker
	delay   time.Duration
	logger  logger.Logger

	// observe is called after every cycle, if set
	observe func(outcome Outcome, err error)
}

// NewScheduler creates a scheduler waiting delay between cycles
func NewScheduler(cycle CycleRunner, sink alert.Sink, breaker *circuitbreaker.CircuitBreaker, delay time.Duration, log logger.Logger) *Scheduler {
	return &Scheduler{
		cycle:   cycle,
		sink:    sink,
		breaker: breaker,
		delay:   delay,
		logger:  log,
	}
}

// Run loops until ctx is done
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started, delay between cycles %v", s.delay)

	for {
		if ctx.Err() != nil {
			s.logger.Info("Scheduler shutting down")
			return
		}

		if s.breaker.RemainingBackoff() > 0 && !s.dueWhileOpen(ctx) {
			if err := sleep(ctx, s.delay); err != nil {
				s.logger.Info("Scheduler shutting down")
				return
			}
			continue
		}

		outcome, err := timed(func() (Outcome, error) { return s.runOnce(ctx) })

		// errors caused by shutdown are not cycle failures
		if err != nil && ctx.Err() != nil {
			s.logger.Info("Scheduler shutting down, cycle interrupted: %v", err)
			return
		}

		if err != nil {
			s.handleFailure(ctx, err)
		} else {
			s.breaker.RecordSuccess()
			if outcome != OutcomeNotDue {
				s.logger.Debug("Cycle finished: %s", outcome)
			}
		}

		if s.observe != nil {
			s.observe(outcome, err)
		}

		if err := sleep(ctx, s.delay); err != nil {
			s.logger.Info("Scheduler shutting down")
			return
		}
	}
}

// runOnce runs a cycle, turning a panic into a *PanicError
func (s *Scheduler) runOnce(ctx context.Context) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeNotDue
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return s.cycle.Run(ctx)
}

// dueWhileOpen checks the gate during backoff. Errors are expected while the breaker is open and only logged.
func (s *Scheduler) dueWhileOpen(ctx context.Context) bool {
	due, err := s.cycle.Due(ctx)
	if err != nil {
		s.logger.Debug("Backing off, height check failed: %v", err)
		return false
	}
	if due {
		s.logger.Notice("Height qualifies while the circuit breaker is open, running the cycle")
	}
	return due
}

// handleFailure reports err, with a single alert per failed cycle
func (s *Scheduler) handleFailure(ctx context.Context, err error) {
	kind := Classify(err)
	metrics.CycleErrors.WithLabelValues(kind).Inc()

	s.logger.Error("Cycle failed (%s): %v", kind, err)
	if panicErr, ok := err.(*PanicError); ok {
		s.logger.Debug("Panic stack:\n%s", panicErr.Stack)
	}

	message := err.Error()
	if s.breaker.RecordFailure() {
		failureCount, _, failureWindow, _ := s.breaker.GetState()
		backoff := s.breaker.RemainingBackoff()
		s.logger.Notice("Circuit breaker open, only qualifying heights run a cycle for the next %v", backoff)
		message = fmt.Sprintf("%s (circuit breaker open after %d failures within %v, backing off for %v)", message, failureCount, failureWindow, backoff)
	}

	s.sink.Notify(ctx, message)
}
