package models

import (
	"encoding/json"
	"math/big"
)

// Coin is an amount of a single denom
type Coin struct {
	Denom  string
	Amount *big.Int
}

// String renders the coin the way the chain does, e.g. "1000uusd"
func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return c.Amount.String() + c.Denom
}

// SwapRequest represents a single market swap of OfferCoin into AskDenom on behalf of Trader
type SwapRequest struct {
	Trader    string
	OfferCoin Coin
	AskDenom  string
}

// SignedTx is a transaction ready for broadcast
type SignedTx struct {
	// Body is the JSON encoded transaction as accepted by the LCD broadcast endpoint
	Body          json.RawMessage
	AccountNumber uint64
	Sequence      uint64
}
