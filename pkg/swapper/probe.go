package swapper

import (
	"context"
	"fmt"
	"math/big"

	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/metrics"
)

// BalanceSource reads account balances from the chain
type BalanceSource interface {
	Balance(ctx context.Context, address, denom string) (*big.Int, bool, error)
}

// BalanceProbe reads the spendable source balance of the swapping account
type BalanceProbe struct {
	source  BalanceSource
	address string
	denom   string
	logger  logger.Logger
}

// NewBalanceProbe creates a probe for denom held by address
func NewBalanceProbe(source BalanceSource, address, denom string, log logger.Logger) *BalanceProbe {
	return &BalanceProbe{
		source:  source,
		address: address,
		denom:   denom,
		logger:  log,
	}
}

// Balance returns the source balance, zero when the account holds none of the denom
func (p *BalanceProbe) Balance(ctx context.Context) (*big.Int, error) {
	amount, found, err := p.source.Balance(ctx, p.address, p.denom)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s balance: %w", p.denom, err)
	}
	if !found || amount == nil {
		p.logger.Debug("No %s entry for %s", p.denom, p.address)
		amount = big.NewInt(0)
	}

	f, _ := new(big.Float).SetInt(amount).Float64()
	metrics.SourceBalance.WithLabelValues(p.denom).Set(f)

	p.logger.Debug("Balance of %s: %s%s", p.address, amount.String(), p.denom)
	return amount, nil
}
