package circuitbreaker

import (
	"sync"
	"time"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
)

// CircuitBreaker trips after threshold failures inside a window and stays open for resetTimeout
type CircuitBreaker struct {
	enabled       bool
	failureCount  int
	failureWindow time.Duration
	failThreshold int
	resetTimeout  time.Duration
	lastFailure   time.Time
	tripped       bool
	tripTime      time.Time
	now           func() time.Time
	logger        logger.Logger
	mu            sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(enabled bool, threshold int, window time.Duration, resetTimeout time.Duration, log logger.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		enabled:       enabled,
		failThreshold: threshold,
		failureWindow: window,
		resetTimeout:  resetTimeout,
		now:           time.Now,
		logger:        log,
	}
}

// RecordFailure records a failure and returns true only when this failure trips the circuit
func (cb *CircuitBreaker) RecordFailure() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()

	if cb.tripped {
		if now.Sub(cb.tripTime) <= cb.resetTimeout {
			return false
		}
		// half-open attempt failed, trip again right away
		cb.tripTime = now
		cb.lastFailure = now
		cb.logger.Notice("Circuit breaker: failure after reset timeout, backing off again for %v", cb.resetTimeout)
		return false
	}

	// Reset failure count if outside window
	if now.Sub(cb.lastFailure) > cb.failureWindow {
		cb.failureCount = 0
	}

	cb.failureCount++
	cb.lastFailure = now

	if cb.failureCount >= cb.failThreshold {
		cb.tripped = true
		cb.tripTime = now
		metrics.CircuitBreakerOpen.Set(1)
		cb.logger.Error("Circuit breaker tripped: %d failures within %v", cb.failureCount, cb.failureWindow)
		return true
	}

	return false
}

// RecordSuccess closes the circuit and clears the failure count
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.tripped {
		cb.logger.Notice("Circuit breaker closed after a successful cycle")
	}
	cb.tripped = false
	cb.failureCount = 0
	metrics.CircuitBreakerOpen.Set(0)
}

// IsOpen returns true if the circuit is open (tripped)
func (cb *CircuitBreaker) IsOpen() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.tripped
}

// RemainingBackoff returns how long callers should still wait before the next attempt
func (cb *CircuitBreaker) RemainingBackoff() time.Duration {
	if !cb.enabled {
		return 0
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.tripped {
		return 0
	}
	remaining := cb.resetTimeout - cb.now().Sub(cb.tripTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset manually resets the circuit breaker
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.tripped = false
	cb.failureCount = 0
	metrics.CircuitBreakerOpen.Set(0)
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() (failureCount int, lastFailure time.Time, failureWindow time.Duration, failThreshold int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount, cb.lastFailure, cb.failureWindow, cb.failThreshold
}

// GetTripTime returns the time when the circuit was tripped
func (cb *CircuitBreaker) GetTripTime() time.Time {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.tripTime
}

// IsEnabled returns true if the circuit breaker is enabled
func (cb *CircuitBreaker) IsEnabled() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.enabled
}
