package swapper

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/speedrun-hq/swapper/pkg/models"
)

// events records the order of side effects across fakes
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(event string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, event)
}

func (e *events) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type fakeCounter struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
	pinErr error
	sets   int
	events *events
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{values: make(map[string]string)}
}

func (c *fakeCounter) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *fakeCounter) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.values[key] = value
	c.events.add("set " + key + "=" + value)
	return nil
}

func (c *fakeCounter) Ping(_ context.Context) error {
	return c.pinErr
}

func (c *fakeCounter) value(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

type lookupResult struct {
	lookup models.TxLookup
	err    error
}

// fakeChain serves heights from a sequence, repeating the last one when exhausted
type fakeChain struct {
	mu sync.Mutex

	heights   []int64
	heightIdx int
	heightErr error

	balance    *big.Int
	balanceErr error

	broadcast    models.BroadcastResult
	broadcastErr error
	broadcasts   []models.SignedTx

	lookups     []lookupResult
	lookupCalls int

	heightCalls  int
	balanceCalls int
	events       *events
}

func (c *fakeChain) LatestHeight(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heightCalls++
	if c.heightErr != nil {
		return 0, c.heightErr
	}
	if len(c.heights) == 0 {
		return 0, errors.New("no heights configured")
	}
	h := c.heights[c.heightIdx]
	if c.heightIdx < len(c.heights)-1 {
		c.heightIdx++
	}
	return h, nil
}

func (c *fakeChain) Balance(_ context.Context, _, _ string) (*big.Int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balanceCalls++
	c.events.add("balance")
	if c.balanceErr != nil {
		return nil, false, c.balanceErr
	}
	if c.balance == nil {
		return big.NewInt(0), false, nil
	}
	return new(big.Int).Set(c.balance), true, nil
}

func (c *fakeChain) BroadcastSync(_ context.Context, signed models.SignedTx) (models.BroadcastResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcasts = append(c.broadcasts, signed)
	c.events.add("broadcast")
	return c.broadcast, c.broadcastErr
}

func (c *fakeChain) TxByHash(_ context.Context, hash string) (models.TxLookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookupCalls++
	if len(c.lookups) == 0 {
		return models.TxLookup{Kind: models.LookupNotFound, Hash: hash}, nil
	}
	next := c.lookups[0]
	if len(c.lookups) > 1 {
		c.lookups = c.lookups[1:]
	}
	next.lookup.Hash = hash
	return next.lookup, next.err
}

func (c *fakeChain) broadcastCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.broadcasts)
}

// risingHeights returns a height one above the previous on every call
type risingHeights struct {
	mu   sync.Mutex
	next int64
}

func (h *risingHeights) LatestHeight(_ context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	return h.next, nil
}

type fakeSigner struct {
	address  string
	err      error
	requests []models.SwapRequest
	events   *events
}

func (s *fakeSigner) Address() string {
	return s.address
}

func (s *fakeSigner) SignSwap(_ context.Context, req models.SwapRequest) (models.SignedTx, error) {
	s.requests = append(s.requests, req)
	s.events.add("sign")
	if s.err != nil {
		return models.SignedTx{}, s.err
	}
	return models.SignedTx{Body: []byte(`{}`), Sequence: uint64(len(s.requests))}, nil
}

type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSink) Notify(_ context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *recordingSink) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}
