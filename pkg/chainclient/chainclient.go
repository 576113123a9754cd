package chainclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
	"github.com/speedrun-hq/swapper/pkg/models"
)

const maxResponseSize = 4 << 20

// Client talks to the LCD REST endpoint of a Cosmos-SDK chain
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// AccountInfo holds the values needed to sign for an account
type AccountInfo struct {
	Address  string
	Number   uint64
	Sequence uint64
}

// TransportError is returned when the endpoint could not be reached or answered with an unexpected status
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// New creates a client for the given LCD endpoint.
// A rateLimit of 0 disables client side throttling.
func New(baseURL string, timeout time.Duration, rateLimit float64, log logger.Logger) *Client {
	var limiter *rate.Limiter
	if rateLimit > 0 {
		burst := int(rateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: createHTTPClient(timeout),
		limiter:    limiter,
		logger:     log,
	}
}

// createHTTPClient returns a client reusing connections across requests
func createHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

type blockResponse struct {
	Block struct {
		Header struct {
			Height flexInt `json:"height"`
		} `json:"header"`
	} `json:"block"`
}

// LatestHeight returns the height of the latest committed block
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/blocks/latest", nil, "latest_height")
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, statusError(http.MethodGet, "/blocks/latest", status, body)
	}

	var resp blockResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode latest block: %w", err)
	}
	if resp.Block.Header.Height <= 0 {
		return 0, fmt.Errorf("latest block has no height")
	}
	return int64(resp.Block.Header.Height), nil
}

type balancesResponse struct {
	Result []struct {
		Denom  string `json:"denom"`
		Amount string `json:"amount"`
	} `json:"result"`
}

// Balance returns the balance of denom held by address.
// found is false when the account has no entry for the denom.
func (c *Client) Balance(ctx context.Context, address, denom string) (*big.Int, bool, error) {
	path := "/bank/balances/" + address
	status, body, err := c.do(ctx, http.MethodGet, path, nil, "balance")
	if err != nil {
		return nil, false, err
	}
	if status != http.StatusOK {
		return nil, false, statusError(http.MethodGet, path, status, body)
	}

	var resp balancesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to decode balances: %w", err)
	}

	for _, coin := range resp.Result {
		if coin.Denom != denom {
			continue
		}
		amount, ok := new(big.Int).SetString(coin.Amount, 10)
		if !ok {
			return nil, false, fmt.Errorf("invalid %s amount %q", denom, coin.Amount)
		}
		return amount, true, nil
	}
	return big.NewInt(0), false, nil
}

type accountResponse struct {
	Result struct {
		Type  string `json:"type"`
		Value struct {
			Address       string   `json:"address"`
			AccountNumber flexUint `json:"account_number"`
			Sequence      flexUint `json:"sequence"`
		} `json:"value"`
	} `json:"result"`
}

// Account returns the account number and sequence used to sign for address
func (c *Client) Account(ctx context.Context, address string) (AccountInfo, error) {
	path := "/auth/accounts/" + address
	status, body, err := c.do(ctx, http.MethodGet, path, nil, "account")
	if err != nil {
		return AccountInfo{}, err
	}
	if status != http.StatusOK {
		return AccountInfo{}, statusError(http.MethodGet, path, status, body)
	}

	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return AccountInfo{}, fmt.Errorf("failed to decode account: %w", err)
	}
	// unknown accounts come back as an empty value
	if resp.Result.Value.Address == "" {
		return AccountInfo{}, fmt.Errorf("account %s not found on chain", address)
	}

	return AccountInfo{
		Address:  resp.Result.Value.Address,
		Number:   uint64(resp.Result.Value.AccountNumber),
		Sequence: uint64(resp.Result.Value.Sequence),
	}, nil
}

type broadcastRequest struct {
	Tx   json.RawMessage `json:"tx"`
	Mode string          `json:"mode"`
}

type broadcastResponse struct {
	Height    flexInt `json:"height"`
	TxHash    string  `json:"txhash"`
	Code      uint32  `json:"code"`
	Codespace string  `json:"codespace"`
	RawLog    string  `json:"raw_log"`
}

// BroadcastSync submits a signed transaction and waits for the mempool check only
func (c *Client) BroadcastSync(ctx context.Context, signed models.SignedTx) (models.BroadcastResult, error) {
	payload, err := json.Marshal(broadcastRequest{Tx: signed.Body, Mode: "sync"})
	if err != nil {
		return models.BroadcastResult{}, fmt.Errorf("failed to encode broadcast request: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, "/txs", payload, "broadcast")
	if err != nil {
		return models.BroadcastResult{}, err
	}
	if status != http.StatusOK {
		return models.BroadcastResult{}, statusError(http.MethodPost, "/txs", status, body)
	}

	var resp broadcastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.BroadcastResult{}, fmt.Errorf("failed to decode broadcast response: %w", err)
	}

	result := models.BroadcastResult{
		Kind:      models.BroadcastAccepted,
		TxHash:    resp.TxHash,
		Code:      resp.Code,
		Codespace: resp.Codespace,
		RawLog:    resp.RawLog,
	}
	if resp.Code != 0 {
		result.Kind = models.BroadcastRejected
	}
	return result, nil
}

type txResponse struct {
	Height    flexInt `json:"height"`
	TxHash    string  `json:"txhash"`
	Code      uint32  `json:"code"`
	Codespace string  `json:"codespace"`
	RawLog    string  `json:"raw_log"`
}

// TxByHash looks a transaction up by hash.
// A transaction that is not indexed yet is reported as LookupNotFound without error.
func (c *Client) TxByHash(ctx context.Context, hash string) (models.TxLookup, error) {
	path := "/txs/" + hash
	status, body, err := c.do(ctx, http.MethodGet, path, nil, "tx")
	if err != nil {
		return models.TxLookup{}, err
	}

	if isNotFound(status, body) {
		return models.TxLookup{Kind: models.LookupNotFound, Hash: hash}, nil
	}
	if status != http.StatusOK {
		return models.TxLookup{}, statusError(http.MethodGet, path, status, body)
	}

	var resp txResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.TxLookup{}, fmt.Errorf("failed to decode tx %s: %w", hash, err)
	}
	// some nodes answer 200 with an empty document while indexing
	if resp.Height <= 0 {
		return models.TxLookup{Kind: models.LookupNotFound, Hash: hash}, nil
	}

	return models.TxLookup{
		Kind:      models.LookupIncluded,
		Hash:      hash,
		Height:    int64(resp.Height),
		Code:      resp.Code,
		Codespace: resp.Codespace,
		RawLog:    resp.RawLog,
	}, nil
}

// do issues a request and returns the status and body.
// Only failures to complete the exchange are returned as errors.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, op string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.LCDRequests.WithLabelValues(op, "error").Inc()
			return 0, nil, &TransportError{Method: method, Path: path, Err: err}
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("%s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.LCDRequests.WithLabelValues(op, "error").Inc()
		return 0, nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.LCDRequests.WithLabelValues(op, "error").Inc()
		return 0, nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	metrics.LCDRequests.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	return resp.StatusCode, body, nil
}

func statusError(method, path string, status int, body []byte) error {
	return &TransportError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Err:        fmt.Errorf("%s", truncate(string(body), 256)),
	}
}

func isNotFound(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	if status == http.StatusOK {
		return false
	}
	return strings.Contains(strings.ToLower(string(body)), "not found")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
