package config

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/speedrun-hq/swapper/pkg/logger"
)

// Config holds the configuration for the swapper service
type Config struct {
	Swap           SwapConfig
	Account        AccountConfig
	Chain          ChainConfig
	Fee            FeeConfig
	Timing         TimingConfig
	StoreURL       string
	StoreKeyPrefix string
	AlertURL       string
	MetricsPort    string
	MetricsAPIKey  string
	CircuitBreaker CircuitBreakerConfig
	LoggerConfig   LoggerConfig
}

// SwapConfig describes the pair and the per-period cap
type SwapConfig struct {
	FromDenom       string
	ToDenom         string
	Interval        int64
	AmountPerPeriod *big.Int
}

// AccountConfig holds the credential material of the swapping account
type AccountConfig struct {
	Mnemonic       string
	PrivateKey     string
	DerivationPath string
	Prefix         string
}

// ChainConfig holds the chain endpoint configuration
type ChainConfig struct {
	NodeURL     string
	ChainID     string
	HTTPTimeout time.Duration
	RateLimit   float64
}

// FeeConfig holds the fee configuration of swap transactions
type FeeConfig struct {
	GasLimit uint64
	GasPrice decimal.Decimal
	GasDenom string
	Memo     string
}

// TimingConfig holds the delays of the scheduler, poller and alert sink
type TimingConfig struct {
	CycleDelay          time.Duration
	ConfirmPollInterval time.Duration
	ConfirmIndexDelay   time.Duration
	ConfirmTimeout      time.Duration
	AlertTimeout        time.Duration
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	fromDenom, err := GetEnvSwapFromDenom()
	if err != nil {
		return nil, err
	}

	toDenom, err := GetEnvSwapToDenom()
	if err != nil {
		return nil, err
	}

	interval, err := GetEnvSwapInterval()
	if err != nil {
		return nil, err
	}

	amountPerPeriod, err := GetEnvSwapAmountPerPeriod()
	if err != nil {
		return nil, err
	}

	derivationPath, err := GetEnvDerivationPath()
	if err != nil {
		return nil, err
	}

	nodeURL, err := GetEnvNodeURL()
	if err != nil {
		return nil, err
	}

	chainID, err := GetEnvChainID()
	if err != nil {
		return nil, err
	}

	alertURL, err := GetEnvSlackNotificationURL()
	if err != nil {
		return nil, err
	}

	storeURL, err := GetEnvStoreURL()
	if err != nil {
		return nil, err
	}

	gasLimit, err := GetEnvGasLimit()
	if err != nil {
		return nil, err
	}

	gasPrice, err := GetEnvGasPrice()
	if err != nil {
		return nil, err
	}

	cycleDelay, err := GetEnvDuration("CYCLE_DELAY", DefaultCycleDelay)
	if err != nil {
		return nil, err
	}

	pollInterval, err := GetEnvDuration("CONFIRM_POLL_INTERVAL", DefaultConfirmPollInterval)
	if err != nil {
		return nil, err
	}

	indexDelay, err := GetEnvDuration("CONFIRM_INDEX_DELAY", DefaultConfirmIndexDelay)
	if err != nil {
		return nil, err
	}

	confirmTimeout, err := GetEnvDuration("CONFIRM_TIMEOUT", DefaultConfirmTimeout)
	if err != nil {
		return nil, err
	}

	httpTimeout, err := GetEnvDuration("HTTP_TIMEOUT", DefaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	alertTimeout, err := GetEnvDuration("ALERT_TIMEOUT", DefaultAlertTimeout)
	if err != nil {
		return nil, err
	}

	rateLimit, err := GetEnvLCDRateLimit()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvDuration("CIRCUIT_BREAKER_WINDOW", DefaultCircuitBreakerWindow)
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvDuration("CIRCUIT_BREAKER_RESET", DefaultCircuitBreakerReset)
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Swap: SwapConfig{
			FromDenom:       fromDenom,
			ToDenom:         toDenom,
			Interval:        interval,
			AmountPerPeriod: amountPerPeriod,
		},
		Account: AccountConfig{
			Mnemonic:       strings.TrimSpace(os.Getenv("MNEMONIC")),
			PrivateKey:     strings.TrimPrefix(strings.TrimSpace(os.Getenv("PRIVATE_KEY")), "0x"),
			DerivationPath: derivationPath,
			Prefix:         GetEnvAccountPrefix(),
		},
		Chain: ChainConfig{
			NodeURL:     nodeURL,
			ChainID:     chainID,
			HTTPTimeout: httpTimeout,
			RateLimit:   rateLimit,
		},
		Fee: FeeConfig{
			GasLimit: gasLimit,
			GasPrice: gasPrice,
			GasDenom: GetEnvGasDenom(),
			Memo:     os.Getenv("MEMO"),
		},
		Timing: TimingConfig{
			CycleDelay:          cycleDelay,
			ConfirmPollInterval: pollInterval,
			ConfirmIndexDelay:   indexDelay,
			ConfirmTimeout:      confirmTimeout,
			AlertTimeout:        alertTimeout,
		},
		StoreURL:       storeURL,
		StoreKeyPrefix: GetEnvStoreKeyPrefix(),
		AlertURL:       alertURL,
		MetricsPort:    metricsPort,
		MetricsAPIKey:  os.Getenv("METRICS_API_KEY"),
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	// Validate cross-field constraints
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Account.Mnemonic == "" && cfg.Account.PrivateKey == "" {
		return fmt.Errorf("MNEMONIC or PRIVATE_KEY environment variable is required")
	}
	if cfg.Account.Mnemonic != "" && cfg.Account.PrivateKey != "" {
		return fmt.Errorf("only one of MNEMONIC and PRIVATE_KEY may be set")
	}
	if cfg.Swap.FromDenom == cfg.Swap.ToDenom {
		return fmt.Errorf("SWAP_FROM_DENOM and SWAP_TO_DENOM must differ, both are %s", cfg.Swap.FromDenom)
	}
	if cfg.Timing.ConfirmPollInterval <= 0 {
		return fmt.Errorf("CONFIRM_POLL_INTERVAL must be greater than 0")
	}
	if cfg.Timing.AlertTimeout <= 0 {
		return fmt.Errorf("ALERT_TIMEOUT must be greater than 0")
	}
	if cfg.Chain.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be greater than 0")
	}
	return nil
}
