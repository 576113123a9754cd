package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapper_cycles_total",
		Help: "The total number of cycles by outcome",
	}, []string{"outcome"})

	CycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapper_cycle_duration_seconds",
		Help:    "Time taken by a cycle",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms up to ~100s
	}, []string{"outcome"})

	CycleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapper_cycle_errors_total",
		Help: "Total number of failed cycles by error kind",
	}, []string{"kind"})

	ChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapper_chain_height",
		Help: "Latest block height observed by the gate",
	})

	LastActedHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapper_last_acted_height",
		Help: "Height persisted by the last positive gate decision",
	})

	SourceBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "swapper_source_balance",
		Help: "Balance of the source denom read on the last qualifying height",
	}, []string{"denom"})

	SwapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapper_swaps_total",
		Help: "The total number of swap transactions by status",
	}, []string{"status"})

	SwappedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapper_swapped_amount_total",
		Help: "Sum of confirmed offer amounts in base units",
	}, []string{"denom"})

	ConfirmationLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapper_confirmation_lookups_total",
		Help: "Transaction lookups issued by the confirmation poller by result",
	}, []string{"result"})

	ConfirmationWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapper_confirmation_wait_seconds",
		Help:    "Time between broadcast and observed inclusion",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // Start at 1s with 10 buckets doubling in size
	})

	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapper_alerts_total",
		Help: "Alert deliveries by status",
	}, []string{"status"})

	LCDRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapper_lcd_requests_total",
		Help: "Requests issued to the chain LCD by method and status",
	}, []string{"method", "status"})

	CircuitBreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapper_circuit_breaker_open",
		Help: "1 when the scheduler backs off after repeated failures",
	})
)
