package wallet

import (
	"context"
	"fmt"

	"github.com/speedrun-hq/swapper/pkg/chainclient"
	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/models"
)

// AccountFetcher returns the on-chain account number and sequence of an address
type AccountFetcher interface {
	Account(ctx context.Context, address string) (chainclient.AccountInfo, error)
}

// Wallet signs swap transactions for a single account
type Wallet struct {
	key      *Key
	chainID  string
	fee      Fee
	memo     string
	accounts AccountFetcher
	logger   logger.Logger
}

// New creates a wallet signing with key on chainID
func New(key *Key, chainID string, fee Fee, memo string, accounts AccountFetcher, log logger.Logger) *Wallet {
	return &Wallet{
		key:      key,
		chainID:  chainID,
		fee:      fee,
		memo:     memo,
		accounts: accounts,
		logger:   log,
	}
}

// Address returns the account the wallet signs for
func (w *Wallet) Address() string {
	return w.key.Address()
}

// SignSwap fetches the current account sequence and signs req
func (w *Wallet) SignSwap(ctx context.Context, req models.SwapRequest) (models.SignedTx, error) {
	if req.Trader != w.key.Address() {
		return models.SignedTx{}, fmt.Errorf("trader %s does not match wallet address %s", req.Trader, w.key.Address())
	}
	if req.OfferCoin.Amount == nil || req.OfferCoin.Amount.Sign() <= 0 {
		return models.SignedTx{}, fmt.Errorf("offer amount must be positive")
	}

	account, err := w.accounts.Account(ctx, w.key.Address())
	if err != nil {
		return models.SignedTx{}, fmt.Errorf("failed to fetch account: %w", err)
	}

	signBytes, err := SignBytes(req, w.chainID, account.Number, account.Sequence, w.fee, w.memo)
	if err != nil {
		return models.SignedTx{}, err
	}

	sig, err := w.key.Sign(signBytes)
	if err != nil {
		return models.SignedTx{}, fmt.Errorf("failed to sign swap: %w", err)
	}

	body, err := encodeStdTx(req, w.fee, w.memo, w.key.PubKey(), sig)
	if err != nil {
		return models.SignedTx{}, err
	}

	w.logger.Debug("Signed swap of %s into %s (account %d, sequence %d, fee %s%s)",
		req.OfferCoin.String(), req.AskDenom, account.Number, account.Sequence, w.fee.Amount().String(), w.fee.Denom)

	return models.SignedTx{
		Body:          body,
		AccountNumber: account.Number,
		Sequence:      account.Sequence,
	}, nil
}
