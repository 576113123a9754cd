package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedrun-hq/swapper/pkg/chainclient"
	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/models"
)

const (
	testMnemonic = "notice oak worry limit wrap speak medal online prefer cluster roof addict wrist behave treat actual wasp year salad speed social layer crew genius"
	testAddress  = "terra1x46rqay4d3cssq8gxxvqz8xt6nwlz4td20k38v"
	terraPath    = "m/44'/330'/0'/0/0"
)

type fakeAccounts struct {
	info  chainclient.AccountInfo
	err   error
	calls int
}

func (f *fakeAccounts) Account(_ context.Context, _ string) (chainclient.AccountInfo, error) {
	f.calls++
	return f.info, f.err
}

func testFee() Fee {
	return Fee{GasLimit: 200000, GasPrice: decimal.RequireFromString("0.01133"), Denom: "uluna"}
}

func TestKeyFromMnemonic(t *testing.T) {
	key, err := KeyFromMnemonic(testMnemonic, terraPath, "terra")
	require.NoError(t, err)
	assert.Equal(t, testAddress, key.Address())
	assert.Len(t, key.PubKey(), 33)
}

func TestKeyFromPrivateKeyMatchesMnemonic(t *testing.T) {
	fromMnemonic, err := KeyFromMnemonic(testMnemonic, terraPath, "terra")
	require.NoError(t, err)

	hexKey := "0x" + hex.EncodeToString(crypto.FromECDSA(fromMnemonic.priv))
	fromHex, err := KeyFromPrivateKey(hexKey, "terra")
	require.NoError(t, err)
	assert.Equal(t, fromMnemonic.Address(), fromHex.Address())
}

func TestLoadKeyErrors(t *testing.T) {
	tests := []struct {
		name       string
		mnemonic   string
		privateKey string
		path       string
		wantErr    string
	}{
		{"nothing", "", "", terraPath, "no key material"},
		{"both", testMnemonic, "abcd", terraPath, "only one of"},
		{"unknown word", "notice oak worry limit wrap speak medal online prefer cluster roof addict wrist behave treat actual wasp year salad speed social layer crew notaword", "", terraPath, "invalid mnemonic"},
		{"bad path", testMnemonic, "", "m/44'/x", "invalid derivation path"},
		{"bad hex", "", "zz", terraPath, "failed to parse private key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKey(tt.mnemonic, tt.privateKey, tt.path, "terra")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAddressPrefix(t *testing.T) {
	key, err := KeyFromMnemonic(testMnemonic, terraPath, "terra")
	require.NoError(t, err)

	other, err := AddressFromPubKey(key.PubKey(), "cosmos")
	require.NoError(t, err)
	assert.Contains(t, other, "cosmos1")
	assert.NotEqual(t, key.Address(), other)

	_, err = AddressFromPubKey([]byte{1, 2, 3}, "terra")
	assert.Error(t, err)
}

func TestFeeAmountRoundsUp(t *testing.T) {
	assert.Equal(t, "2266", testFee().Amount().String())

	fee := Fee{GasLimit: 200000, GasPrice: decimal.RequireFromString("0.011331"), Denom: "uluna"}
	assert.Equal(t, "2267", fee.Amount().String())

	free := Fee{GasLimit: 200000, GasPrice: decimal.Zero, Denom: "uluna"}
	assert.Equal(t, "0", free.Amount().String())
}

func TestSignBytesSorted(t *testing.T) {
	req := models.SwapRequest{
		Trader:    testAddress,
		OfferCoin: models.Coin{Denom: "uusd", Amount: big.NewInt(1000)},
		AskDenom:  "uluna",
	}

	bz, err := SignBytes(req, "columbus-5", 42, 7, testFee(), "")
	require.NoError(t, err)

	expected := `{"account_number":"42","chain_id":"columbus-5",` +
		`"fee":{"amount":[{"amount":"2266","denom":"uluna"}],"gas":"200000"},` +
		`"memo":"",` +
		`"msgs":[{"type":"market/MsgSwap","value":{"ask_denom":"uluna","offer_coin":{"amount":"1000","denom":"uusd"},"trader":"` + testAddress + `"}}],` +
		`"sequence":"7"}`
	assert.Equal(t, expected, string(bz))
}

func TestSignSwap(t *testing.T) {
	key, err := KeyFromMnemonic(testMnemonic, terraPath, "terra")
	require.NoError(t, err)

	accounts := &fakeAccounts{info: chainclient.AccountInfo{Address: testAddress, Number: 42, Sequence: 7}}
	w := New(key, "columbus-5", testFee(), "swapper", accounts, &logger.EmptyLogger{})

	req := models.SwapRequest{
		Trader:    testAddress,
		OfferCoin: models.Coin{Denom: "uusd", Amount: big.NewInt(1000)},
		AskDenom:  "uluna",
	}

	signed, err := w.SignSwap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, accounts.calls)
	assert.Equal(t, uint64(42), signed.AccountNumber)
	assert.Equal(t, uint64(7), signed.Sequence)

	var tx stdTx
	require.NoError(t, json.Unmarshal(signed.Body, &tx))
	require.Len(t, tx.Msg, 1)
	assert.Equal(t, MsgSwapType, tx.Msg[0].Type)
	assert.Equal(t, "1000", tx.Msg[0].Value.OfferCoin.Amount)
	assert.Equal(t, "swapper", tx.Memo)
	require.Len(t, tx.Signatures, 1)
	assert.Equal(t, pubKeyType, tx.Signatures[0].PubKey.Type)

	pub, err := base64.StdEncoding.DecodeString(tx.Signatures[0].PubKey.Value)
	require.NoError(t, err)
	assert.Equal(t, key.PubKey(), pub)

	sig, err := base64.StdEncoding.DecodeString(tx.Signatures[0].Signature)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	signBytes, err := SignBytes(req, "columbus-5", 42, 7, testFee(), "swapper")
	require.NoError(t, err)
	hash := sha256.Sum256(signBytes)
	assert.True(t, crypto.VerifySignature(pub, hash[:], sig))
}

func TestSignSwapErrors(t *testing.T) {
	key, err := KeyFromMnemonic(testMnemonic, terraPath, "terra")
	require.NoError(t, err)

	req := models.SwapRequest{
		Trader:    testAddress,
		OfferCoin: models.Coin{Denom: "uusd", Amount: big.NewInt(1000)},
		AskDenom:  "uluna",
	}

	failing := &fakeAccounts{err: errors.New("connection refused")}
	w := New(key, "columbus-5", testFee(), "", failing, &logger.EmptyLogger{})
	_, err = w.SignSwap(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	accounts := &fakeAccounts{info: chainclient.AccountInfo{Address: testAddress}}
	w = New(key, "columbus-5", testFee(), "", accounts, &logger.EmptyLogger{})

	wrongTrader := req
	wrongTrader.Trader = "terra1someoneelse"
	_, err = w.SignSwap(context.Background(), wrongTrader)
	assert.Error(t, err)

	zero := req
	zero.OfferCoin = models.Coin{Denom: "uusd", Amount: big.NewInt(0)}
	_, err = w.SignSwap(context.Background(), zero)
	assert.Error(t, err)
	assert.Equal(t, 0, accounts.calls, "precondition failures should not hit the chain")
}
