package config

import (
	"fmt"
	"math/big"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/shopspring/decimal"
	"github.com/speedrun-hq/swapper/pkg/logger"
)

const (
	// DefaultDerivationPath is the BIP-44 path for the Terra coin type
	DefaultDerivationPath = "m/44'/330'/0'/0/0"

	// DefaultAccountPrefix is the bech32 prefix of account addresses
	DefaultAccountPrefix = "terra"

	// DefaultStoreKeyPrefix is prepended to every key written to the durable store
	DefaultStoreKeyPrefix = "swapper_"

	// DefaultGasLimit defines the gas limit of a swap transaction
	DefaultGasLimit = 200000

	// DefaultGasPrice defines the gas price in DefaultGasDenom
	DefaultGasPrice = "0.01133"

	// DefaultGasDenom defines the denom fees are paid in
	DefaultGasDenom = "uluna"

	// DefaultCycleDelay defines the wait between two cycles
	DefaultCycleDelay = 1 * time.Second

	// DefaultConfirmPollInterval defines how often the chain is polled for a submitted transaction
	DefaultConfirmPollInterval = 3 * time.Second

	// DefaultConfirmIndexDelay defines the grace period given to the tx index after a new block
	DefaultConfirmIndexDelay = 500 * time.Millisecond

	// DefaultConfirmTimeout of zero means the confirmation wait is unbounded
	DefaultConfirmTimeout = time.Duration(0)

	// DefaultHTTPTimeout defines the timeout of a single LCD request
	DefaultHTTPTimeout = 15 * time.Second

	// DefaultAlertTimeout defines the timeout of a single alert delivery
	DefaultAlertTimeout = 15 * time.Second

	// DefaultLCDRateLimit of zero disables client side rate limiting
	DefaultLCDRateLimit = 0.0

	// DefaultMetricsPort defines the default port for the metrics server
	DefaultMetricsPort = "8080"

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker
	DefaultCircuitBreakerWindow = 5 * time.Minute

	// DefaultCircuitBreakerReset defines how long the scheduler backs off once the breaker trips
	DefaultCircuitBreakerReset = 1 * time.Minute

	// DefaultLogLevel defines the default log level
	DefaultLogLevel = logger.InfoLevel
)

// GetEnvSwapFromDenom returns the denom to swap from
func GetEnvSwapFromDenom() (string, error) {
	return requiredDenom("SWAP_FROM_DENOM")
}

// GetEnvSwapToDenom returns the denom to swap into
func GetEnvSwapToDenom() (string, error) {
	return requiredDenom("SWAP_TO_DENOM")
}

func requiredDenom(key string) (string, error) {
	denom := strings.TrimSpace(os.Getenv(key))
	if denom == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return denom, nil
}

// GetEnvSwapInterval returns the swap interval in blocks
func GetEnvSwapInterval() (int64, error) {
	interval := os.Getenv("SWAP_INTERVAL")
	if interval == "" {
		return 0, fmt.Errorf("SWAP_INTERVAL environment variable is required")
	}

	parsed, err := strconv.ParseInt(interval, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid SWAP_INTERVAL value: %s, must be an integer", interval)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("SWAP_INTERVAL must be greater than 0")
	}
	return parsed, nil
}

// GetEnvSwapAmountPerPeriod returns the maximum amount swapped in one period
func GetEnvSwapAmountPerPeriod() (*big.Int, error) {
	amount := os.Getenv("SWAP_AMOUNT_PER_PERIOD")
	if amount == "" {
		return nil, fmt.Errorf("SWAP_AMOUNT_PER_PERIOD environment variable is required")
	}

	amountBig, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid SWAP_AMOUNT_PER_PERIOD value: %s, must be a valid integer string", amount)
	}
	if amountBig.Sign() <= 0 {
		return nil, fmt.Errorf("SWAP_AMOUNT_PER_PERIOD must be greater than 0")
	}
	return amountBig, nil
}

// GetEnvDerivationPath returns the HD derivation path used with MNEMONIC
func GetEnvDerivationPath() (string, error) {
	path := os.Getenv("DERIVATION_PATH")
	if path == "" {
		return DefaultDerivationPath, nil
	}

	if _, err := accounts.ParseDerivationPath(path); err != nil {
		return "", fmt.Errorf("invalid DERIVATION_PATH value: %s: %v", path, err)
	}
	return path, nil
}

// GetEnvAccountPrefix returns the bech32 account prefix
func GetEnvAccountPrefix() string {
	prefix := os.Getenv("ACCOUNT_PREFIX")
	if prefix == "" {
		return DefaultAccountPrefix
	}
	return prefix
}

// GetEnvNodeURL returns the LCD endpoint of the chain
func GetEnvNodeURL() (string, error) {
	nodeURL := os.Getenv("NODE_URL")
	if nodeURL == "" {
		return "", fmt.Errorf("NODE_URL environment variable is required")
	}

	if _, err := url.ParseRequestURI(nodeURL); err != nil {
		return "", fmt.Errorf("invalid NODE_URL value: %s, must be a valid URL", nodeURL)
	}
	return strings.TrimRight(nodeURL, "/"), nil
}

// GetEnvChainID returns the chain identifier
func GetEnvChainID() (string, error) {
	chainID := os.Getenv("CHAIN_ID")
	if chainID == "" {
		return "", fmt.Errorf("CHAIN_ID environment variable is required")
	}
	return chainID, nil
}

// GetEnvSlackNotificationURL returns the alert webhook, empty disables alerting
func GetEnvSlackNotificationURL() (string, error) {
	webhook := os.Getenv("SLACK_NOTIFICATION_URL")
	if webhook == "" {
		return "", nil
	}

	if _, err := url.ParseRequestURI(webhook); err != nil {
		return "", fmt.Errorf("invalid SLACK_NOTIFICATION_URL value: %s, must be a valid URL", webhook)
	}
	return webhook, nil
}

// GetEnvStoreURL returns the durable store connection string
func GetEnvStoreURL() (string, error) {
	storeURL := os.Getenv("REDIS_URL")
	if storeURL == "" {
		return "", fmt.Errorf("REDIS_URL environment variable is required")
	}

	if _, err := url.Parse(storeURL); err != nil {
		return "", fmt.Errorf("invalid REDIS_URL value: %v", err)
	}
	return storeURL, nil
}

// GetEnvStoreKeyPrefix returns the prefix of durable store keys
func GetEnvStoreKeyPrefix() string {
	prefix, ok := os.LookupEnv("STORE_KEY_PREFIX")
	if !ok {
		return DefaultStoreKeyPrefix
	}
	return prefix
}

// GetEnvGasLimit returns the gas limit of swap transactions
func GetEnvGasLimit() (uint64, error) {
	gasLimit := os.Getenv("GAS_LIMIT")
	if gasLimit == "" {
		return DefaultGasLimit, nil
	}

	parsed, err := strconv.ParseUint(gasLimit, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid GAS_LIMIT value: %s, must be an integer", gasLimit)
	}
	if parsed == 0 {
		return 0, fmt.Errorf("GAS_LIMIT must be greater than 0")
	}
	return parsed, nil
}

// GetEnvGasPrice returns the gas price used to compute the fee
func GetEnvGasPrice() (decimal.Decimal, error) {
	gasPrice := os.Getenv("GAS_PRICE")
	if gasPrice == "" {
		gasPrice = DefaultGasPrice
	}

	parsed, err := decimal.NewFromString(gasPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid GAS_PRICE value: %s, must be a decimal number", gasPrice)
	}
	if parsed.IsNegative() {
		return decimal.Zero, fmt.Errorf("GAS_PRICE must be greater than or equal to 0")
	}
	return parsed, nil
}

// GetEnvGasDenom returns the denom fees are paid in
func GetEnvGasDenom() string {
	denom := os.Getenv("GAS_DENOM")
	if denom == "" {
		return DefaultGasDenom
	}
	return denom
}

// GetEnvDuration reads a duration string, falling back to def when unset
func GetEnvDuration(key string, def time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s, must be a valid duration string", key, value)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", key)
	}
	return parsed, nil
}

// GetEnvLCDRateLimit returns the maximum LCD requests per second
func GetEnvLCDRateLimit() (float64, error) {
	limit := os.Getenv("LCD_RATE_LIMIT")
	if limit == "" {
		return DefaultLCDRateLimit, nil
	}

	parsed, err := strconv.ParseFloat(limit, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid LCD_RATE_LIMIT value: %s, must be a number", limit)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("LCD_RATE_LIMIT must be greater than or equal to 0")
	}
	return parsed, nil
}

// GetEnvMetricsPort returns the metrics server port from environment variables
func GetEnvMetricsPort() (string, error) {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		return DefaultMetricsPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return DefaultLogLevel, nil
	}

	parsed, err := logger.ParseLevel(level)
	if err != nil {
		return DefaultLogLevel, fmt.Errorf("invalid LOG_LEVEL value: %s, must be one of debug, info, notice, error", level)
	}
	return parsed, nil
}

// GetEnvLogColoring returns whether log prefixes are colored
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return false, nil
	}

	parsed, err := strconv.ParseBool(coloring)
	if err != nil {
		return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
	}
	return parsed, nil
}
