package swapper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/speedrun-hq/swapper/pkg/chainclient"
)

// ErrInvalidRequest is returned when a swap request cannot be built from its inputs
var ErrInvalidRequest = errors.New("invalid swap request")

// BroadcastRejectedError is returned when the entry node refuses a transaction during its check
type BroadcastRejectedError struct {
	TxHash    string
	Code      uint32
	Codespace string
	RawLog    string
}

func (e *BroadcastRejectedError) Error() string {
	return fmt.Sprintf("Failed with Error Code: %d and Error Log: %s", e.Code, e.RawLog)
}

// TxFailedError is returned when a transaction was included in a block with a failure code
type TxFailedError struct {
	Hash   string
	Height int64
	Code   uint32
	RawLog string
}

func (e *TxFailedError) Error() string {
	return fmt.Sprintf("failed tx %s: code: %d, raw_log: %s", e.Hash, e.Code, e.RawLog)
}

// ConfirmTimeoutError is returned when a transaction was not observed before the confirmation deadline
type ConfirmTimeoutError struct {
	Hash    string
	Waited  time.Duration
	Lookups int
}

func (e *ConfirmTimeoutError) Error() string {
	return fmt.Sprintf("tx %s not confirmed after %v (%d lookups)", e.Hash, e.Waited.Round(time.Second), e.Lookups)
}

// StoreError wraps failures of the durable counter store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("counter store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// SigningError wraps failures to produce a signed transaction
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("failed to sign swap: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// PanicError carries a panic recovered from a cycle
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in cycle: %v", e.Value)
}

// Classify maps an error to a short label used in metrics and logs
func Classify(err error) string {
	var (
		rejected  *BroadcastRejectedError
		failed    *TxFailedError
		timeout   *ConfirmTimeoutError
		storeErr  *StoreError
		signErr   *SigningError
		panicErr  *PanicError
		transport *chainclient.TransportError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &panicErr):
		return "panic"
	case errors.As(err, &rejected):
		return "broadcast_rejected"
	case errors.As(err, &failed):
		return "tx_failed"
	case errors.As(err, &timeout):
		return "confirm_timeout"
	case errors.As(err, &storeErr):
		return "store"
	case errors.As(err, &signErr):
		return "signing"
	case errors.As(err, &transport):
		return "transport"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
