package swapper

import (
	"fmt"
	"math/big"

	"github.com/speedrun-hq/swapper/pkg/models"
)

// BuildSwapRequest offers min(balance, limit) of fromDenom for toDenom on behalf of sender
func BuildSwapRequest(sender string, balance, limit *big.Int, fromDenom, toDenom string) (models.SwapRequest, error) {
	switch {
	case sender == "":
		return models.SwapRequest{}, fmt.Errorf("%w: empty sender", ErrInvalidRequest)
	case fromDenom == "" || toDenom == "":
		return models.SwapRequest{}, fmt.Errorf("%w: empty denom", ErrInvalidRequest)
	case fromDenom == toDenom:
		return models.SwapRequest{}, fmt.Errorf("%w: cannot swap %s into itself", ErrInvalidRequest, fromDenom)
	case balance == nil || balance.Sign() < 0:
		return models.SwapRequest{}, fmt.Errorf("%w: balance must be non-negative", ErrInvalidRequest)
	case limit == nil || limit.Sign() < 0:
		return models.SwapRequest{}, fmt.Errorf("%w: cap must be non-negative", ErrInvalidRequest)
	}

	amount := new(big.Int).Set(balance)
	if balance.Cmp(limit) > 0 {
		amount.Set(limit)
	}

	return models.SwapRequest{
		Trader:    sender,
		OfferCoin: models.Coin{Denom: fromDenom, Amount: amount},
		AskDenom:  toDenom,
	}, nil
}
