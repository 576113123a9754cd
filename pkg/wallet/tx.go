package wallet

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/speedrun-hq/swapper/pkg/models"
)

// MsgSwapType is the amino route of the market swap message
const MsgSwapType = "market/MsgSwap"

const pubKeyType = "tendermint/PubKeySecp256k1"

// Fields of the amino JSON types below are declared in alphabetical order so
// encoding/json emits the sorted form the chain verifies signatures against.

type coin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

type msgSwapValue struct {
	AskDenom  string `json:"ask_denom"`
	OfferCoin coin   `json:"offer_coin"`
	Trader    string `json:"trader"`
}

type msg struct {
	Type  string       `json:"type"`
	Value msgSwapValue `json:"value"`
}

type stdFee struct {
	Amount []coin `json:"amount"`
	Gas    string `json:"gas"`
}

type signDoc struct {
	AccountNumber string `json:"account_number"`
	ChainID       string `json:"chain_id"`
	Fee           stdFee `json:"fee"`
	Memo          string `json:"memo"`
	Msgs          []msg  `json:"msgs"`
	Sequence      string `json:"sequence"`
}

type pubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type stdSignature struct {
	PubKey    pubKey `json:"pub_key"`
	Signature string `json:"signature"`
}

type stdTx struct {
	Fee        stdFee         `json:"fee"`
	Memo       string         `json:"memo"`
	Msg        []msg          `json:"msg"`
	Signatures []stdSignature `json:"signatures"`
}

// Fee describes how swap transactions pay for gas
type Fee struct {
	GasLimit uint64
	GasPrice decimal.Decimal
	Denom    string
}

// Amount returns ceil(GasLimit * GasPrice) in base units
func (f Fee) Amount() *big.Int {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(f.GasLimit), 0).
		Mul(f.GasPrice).
		Ceil().
		BigInt()
}

func (f Fee) toStd() stdFee {
	return stdFee{
		Amount: []coin{{Amount: f.Amount().String(), Denom: f.Denom}},
		Gas:    strconv.FormatUint(f.GasLimit, 10),
	}
}

func swapMsg(req models.SwapRequest) msg {
	return msg{
		Type: MsgSwapType,
		Value: msgSwapValue{
			AskDenom:  req.AskDenom,
			OfferCoin: coin{Amount: req.OfferCoin.Amount.String(), Denom: req.OfferCoin.Denom},
			Trader:    req.Trader,
		},
	}
}

// SignBytes returns the canonical bytes signed for a swap
func SignBytes(req models.SwapRequest, chainID string, accountNumber, sequence uint64, fee Fee, memo string) ([]byte, error) {
	doc := signDoc{
		AccountNumber: strconv.FormatUint(accountNumber, 10),
		ChainID:       chainID,
		Fee:           fee.toStd(),
		Memo:          memo,
		Msgs:          []msg{swapMsg(req)},
		Sequence:      strconv.FormatUint(sequence, 10),
	}
	bz, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign doc: %w", err)
	}
	return bz, nil
}

func encodeStdTx(req models.SwapRequest, fee Fee, memo string, pub, sig []byte) (json.RawMessage, error) {
	tx := stdTx{
		Fee:  fee.toStd(),
		Memo: memo,
		Msg:  []msg{swapMsg(req)},
		Signatures: []stdSignature{{
			PubKey:    pubKey{Type: pubKeyType, Value: base64.StdEncoding.EncodeToString(pub)},
			Signature: base64.StdEncoding.EncodeToString(sig),
		}},
	}
	bz, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tx: %w", err)
	}
	return bz, nil
}
