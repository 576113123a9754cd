package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
)

// Sink delivers operator notifications. Delivery failures never reach the caller.
type Sink interface {
	Notify(ctx context.Context, message string)
}

// New returns a Slack sink for url, or a no-op sink when url is empty
func New(url string, timeout time.Duration, log logger.Logger) Sink {
	if url == "" {
		log.Notice("No alert URL configured, alerts are disabled")
		return &NoopSink{}
	}
	return NewSlackSink(url, timeout, log)
}

// FormatMessage renders the text posted to the channel
func FormatMessage(message string) string {
	return fmt.Sprintf("Swapper Error: %s '<!channel>'", message)
}

// SlackSink posts messages to a Slack compatible incoming webhook
type SlackSink struct {
	webhookURL string
	timeout    time.Duration
	client     *http.Client
	logger     logger.Logger
}

// NewSlackSink creates a sink posting to webhookURL with its own delivery timeout
func NewSlackSink(webhookURL string, timeout time.Duration, log logger.Logger) *SlackSink {
	return &SlackSink{
		webhookURL: webhookURL,
		timeout:    timeout,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log,
	}
}

// Notify posts message and logs any delivery failure.
// Delivery outlives cancellation of ctx so shutdown errors are still reported.
func (s *SlackSink) Notify(ctx context.Context, message string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.send(ctx, FormatMessage(message)); err != nil {
		metrics.AlertsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Failed to deliver alert: %v", err)
		return
	}
	metrics.AlertsTotal.WithLabelValues("sent").Inc()
	s.logger.Debug("Alert delivered")
}

func (s *SlackSink) send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack alert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopSink drops every message. Used when no alert URL is configured.
type NoopSink struct{}

func (n *NoopSink) Notify(_ context.Context, _ string) {}
