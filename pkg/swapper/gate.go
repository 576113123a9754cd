package swapper

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
)

// LastHeightKey is the counter holding the last height the gate fired at
const LastHeightKey = "last_height"

// Counter is the durable key value storage the gate persists its decision in
type Counter interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ShouldAct reports whether the worker acts at height current.
// It fires one block before every interval boundary and never twice for the same height.
func ShouldAct(current, lastActed, interval int64) bool {
	if interval <= 0 {
		return false
	}
	return current > lastActed && (current+1)%interval == 0
}

// HeightGate decides whether a height qualifies and records the decision durably
type HeightGate struct {
	counter  Counter
	interval int64
	logger   logger.Logger
}

// NewHeightGate creates a gate firing every interval blocks
func NewHeightGate(counter Counter, interval int64, log logger.Logger) *HeightGate {
	return &HeightGate{
		counter:  counter,
		interval: interval,
		logger:   log,
	}
}

// LastActed returns the persisted height, 0 when nothing was stored yet
func (g *HeightGate) LastActed(ctx context.Context) (int64, error) {
	raw, found, err := g.counter.Get(ctx, LastHeightKey)
	if err != nil {
		return 0, &StoreError{Op: "get", Err: err}
	}
	if !found || strings.TrimSpace(raw) == "" {
		return 0, nil
	}

	height, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &StoreError{Op: "get", Err: fmt.Errorf("invalid %s value %q: %w", LastHeightKey, raw, err)}
	}
	return height, nil
}

// Due reports whether current qualifies without recording anything
func (g *HeightGate) Due(ctx context.Context, current int64) (bool, error) {
	lastActed, err := g.LastActed(ctx)
	if err != nil {
		return false, err
	}
	return ShouldAct(current, lastActed, g.interval), nil
}

// Acquire evaluates the gate at current and, when it fires, persists current before returning.
// Nothing is written when the gate does not fire.
func (g *HeightGate) Acquire(ctx context.Context, current int64) (bool, error) {
	lastActed, err := g.LastActed(ctx)
	if err != nil {
		return false, err
	}

	if !ShouldAct(current, lastActed, g.interval) {
		g.logger.Debug("Height %d not due (last acted %d, interval %d)", current, lastActed, g.interval)
		return false, nil
	}

	if err := g.counter.Set(ctx, LastHeightKey, strconv.FormatInt(current, 10)); err != nil {
		return false, &StoreError{Op: "set", Err: err}
	}
	metrics.LastActedHeight.Set(float64(current))

	g.logger.Info("Height %d qualifies, recorded as last acted (previous %d)", current, lastActed)
	return true, nil
}
