package swapper

import (
	"context"
	"fmt"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
	"github.com/speedrun-hq/swapper/pkg/models"
)

// Broadcaster hands signed transactions to the chain
type Broadcaster interface {
	BroadcastSync(ctx context.Context, signed models.SignedTx) (models.BroadcastResult, error)
}

// Submitter broadcasts a signed swap once and reports its hash
type Submitter struct {
	broadcaster Broadcaster
	logger      logger.Logger
}

// NewSubmitter creates a submitter using broadcaster
func NewSubmitter(broadcaster Broadcaster, log logger.Logger) *Submitter {
	return &Submitter{
		broadcaster: broadcaster,
		logger:      log,
	}
}

// Submit broadcasts signed and returns its hash. Rejections are never retried.
func (s *Submitter) Submit(ctx context.Context, signed models.SignedTx) (string, error) {
	result, err := s.broadcaster.BroadcastSync(ctx, signed)
	if err != nil {
		metrics.SwapsTotal.WithLabelValues("broadcast_error").Inc()
		return "", fmt.Errorf("failed to broadcast swap: %w", err)
	}

	if result.Kind == models.BroadcastRejected {
		metrics.SwapsTotal.WithLabelValues("rejected").Inc()
		s.logger.Error("Broadcast rejected: code %d (%s): %s", result.Code, result.Codespace, result.RawLog)
		return "", &BroadcastRejectedError{
			TxHash:    result.TxHash,
			Code:      result.Code,
			Codespace: result.Codespace,
			RawLog:    result.RawLog,
		}
	}

	if result.TxHash == "" {
		metrics.SwapsTotal.WithLabelValues("broadcast_error").Inc()
		return "", fmt.Errorf("broadcast accepted without a tx hash")
	}

	metrics.SwapsTotal.WithLabelValues("submitted").Inc()
	s.logger.Info("Tx %s accepted into mempool (sequence %d)", result.TxHash, signed.Sequence)
	return result.TxHash, nil
}
