package swapper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/store"
)

func TestShouldAct(t *testing.T) {
	tests := []struct {
		name      string
		current   int64
		lastActed int64
		interval  int64
		want      bool
	}{
		{"one before boundary", 16, 0, 17, true},
		{"boundary itself", 17, 0, 17, false},
		{"two before boundary", 15, 0, 17, false},
		{"already acted", 16, 16, 17, false},
		{"last acted ahead", 16, 20, 17, false},
		{"next period", 33, 16, 17, true},
		{"next period already acted", 33, 33, 17, false},
		{"interval one", 5, 4, 1, true},
		{"interval one same height", 5, 5, 1, false},
		{"zero interval", 16, 0, 0, false},
		{"negative interval", 16, 0, -17, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldAct(tt.current, tt.lastActed, tt.interval))
		})
	}
}

func TestShouldActFirstHeight(t *testing.T) {
	var first int64
	for h := int64(1); h <= 40; h++ {
		if ShouldAct(h, 0, 17) {
			first = h
			break
		}
	}
	assert.Equal(t, int64(16), first)
}

func TestHeightGateAcquire(t *testing.T) {
	ctx := context.Background()
	counter := newFakeCounter()
	gate := NewHeightGate(counter, 17, &logger.EmptyLogger{})

	acted, err := gate.Acquire(ctx, 15)
	require.NoError(t, err)
	assert.False(t, acted)
	assert.Equal(t, 0, counter.sets, "nothing is written when the gate does not fire")

	acted, err = gate.Acquire(ctx, 16)
	require.NoError(t, err)
	assert.True(t, acted)
	assert.Equal(t, "16", counter.value(LastHeightKey))

	acted, err = gate.Acquire(ctx, 16)
	require.NoError(t, err)
	assert.False(t, acted, "same height must not fire twice")
	assert.Equal(t, 1, counter.sets)

	lastActed, err := gate.LastActed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(16), lastActed)
}

func TestHeightGateActsOncePerPeriod(t *testing.T) {
	ctx := context.Background()
	gate := NewHeightGate(store.NewMemoryStore("swapper_"), 17, &logger.EmptyLogger{})

	var acted []int64
	for _, h := range []int64{14, 15, 16, 16, 17, 17} {
		ok, err := gate.Acquire(ctx, h)
		require.NoError(t, err)
		if ok {
			acted = append(acted, h)
		}
	}
	assert.Equal(t, []int64{16}, acted)
}

func TestHeightGateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	counter := newFakeCounter()

	first := NewHeightGate(counter, 17, &logger.EmptyLogger{})
	ok, err := first.Acquire(ctx, 16)
	require.NoError(t, err)
	require.True(t, ok)

	restarted := NewHeightGate(counter, 17, &logger.EmptyLogger{})
	ok, err = restarted.Acquire(ctx, 16)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHeightGateStoreErrors(t *testing.T) {
	ctx := context.Background()

	counter := newFakeCounter()
	counter.getErr = errors.New("connection refused")
	_, err := NewHeightGate(counter, 17, &logger.EmptyLogger{}).Acquire(ctx, 16)
	require.Error(t, err)
	assert.Equal(t, "store", Classify(err))

	counter = newFakeCounter()
	counter.setErr = errors.New("READONLY")
	ok, err := NewHeightGate(counter, 17, &logger.EmptyLogger{}).Acquire(ctx, 16)
	require.Error(t, err)
	assert.False(t, ok, "a failed write must not let the cycle proceed")
	assert.Equal(t, "store", Classify(err))

	counter = newFakeCounter()
	counter.values[LastHeightKey] = "sixteen"
	_, err = NewHeightGate(counter, 17, &logger.EmptyLogger{}).LastActed(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid last_height")
}
