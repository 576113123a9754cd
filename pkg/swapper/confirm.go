package swapper

import (
	"context"
	"time"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
	"github.com/speedrun-hq/swapper/pkg/models"
)

// HeightSource reports the latest committed block height
type HeightSource interface {
	LatestHeight(ctx context.Context) (int64, error)
}

// TxFinder looks transactions up by hash
type TxFinder interface {
	TxByHash(ctx context.Context, hash string) (models.TxLookup, error)
}

// PollerConfig holds the timing of the confirmation poller
type PollerConfig struct {
	// Interval between height checks
	Interval time.Duration
	// IndexDelay is waited after a new height before looking the tx up
	IndexDelay time.Duration
	// Timeout bounds the whole wait, 0 waits until ctx is done
	Timeout time.Duration
}

// ConfirmationPoller waits until a broadcast transaction shows up in a block
type ConfirmationPoller struct {
	heights HeightSource
	txs     TxFinder
	cfg     PollerConfig
	logger  logger.Logger
}

// NewConfirmationPoller creates a poller
func NewConfirmationPoller(heights HeightSource, txs TxFinder, cfg PollerConfig, log logger.Logger) *ConfirmationPoller {
	return &ConfirmationPoller{
		heights: heights,
		txs:     txs,
		cfg:     cfg,
		logger:  log,
	}
}

// Wait polls until hash is included. A tx included with a non-zero code returns a *TxFailedError.
// Lookups only happen once per new block height; query failures are logged and polling goes on.
func (p *ConfirmationPoller) Wait(ctx context.Context, hash string) (models.Confirmation, error) {
	start := time.Now()

	pollCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	var (
		lastChecked int64
		lookups     int
	)

	for {
		if err := sleep(pollCtx, p.cfg.Interval); err != nil {
			return p.stopped(ctx, hash, start, lookups)
		}

		height, err := p.heights.LatestHeight(pollCtx)
		if err != nil {
			if pollCtx.Err() != nil {
				return p.stopped(ctx, hash, start, lookups)
			}
			metrics.ConfirmationLookups.WithLabelValues("height_error").Inc()
			p.logger.Error("Failed to load block height while confirming %s: %v", hash, err)
			continue
		}

		if height <= lastChecked {
			continue
		}
		lastChecked = height

		if err := sleep(pollCtx, p.cfg.IndexDelay); err != nil {
			return p.stopped(ctx, hash, start, lookups)
		}

		lookups++
		lookup, err := p.txs.TxByHash(pollCtx, hash)
		if err != nil {
			if pollCtx.Err() != nil {
				return p.stopped(ctx, hash, start, lookups)
			}
			metrics.ConfirmationLookups.WithLabelValues("error").Inc()
			p.logger.Error("Failed to look up tx %s at height %d: %v", hash, height, err)
			continue
		}

		if lookup.Kind != models.LookupIncluded {
			metrics.ConfirmationLookups.WithLabelValues("not_found").Inc()
			p.logger.Debug("Tx %s pending at height %d", hash, height)
			continue
		}

		metrics.ConfirmationWait.Observe(time.Since(start).Seconds())

		if !lookup.Succeeded() {
			metrics.ConfirmationLookups.WithLabelValues("failed").Inc()
			p.logger.Error("Tx %s failed at height %d: code %d: %s", hash, lookup.Height, lookup.Code, lookup.RawLog)
			failed := models.Confirmation{
				State:  models.ConfirmationFailed,
				Hash:   hash,
				Height: lookup.Height,
				Code:   lookup.Code,
				RawLog: lookup.RawLog,
			}
			return failed, &TxFailedError{
				Hash:   hash,
				Height: lookup.Height,
				Code:   lookup.Code,
				RawLog: lookup.RawLog,
			}
		}

		metrics.ConfirmationLookups.WithLabelValues("included").Inc()
		p.logger.Info("Tx %s included at height %d after %d lookups", hash, lookup.Height, lookups)
		return models.Confirmation{
			State:  models.ConfirmationConfirmed,
			Hash:   hash,
			Height: lookup.Height,
		}, nil
	}
}

// stopped tells the caller's cancellation apart from the poller's own deadline
func (p *ConfirmationPoller) stopped(ctx context.Context, hash string, start time.Time, lookups int) (models.Confirmation, error) {
	pending := models.Confirmation{State: models.ConfirmationPending, Hash: hash}
	if err := ctx.Err(); err != nil {
		return pending, err
	}
	return pending, &ConfirmTimeoutError{Hash: hash, Waited: time.Since(start), Lookups: lookups}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
