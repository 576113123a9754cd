package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address format requires ripemd160
)

// Key is a secp256k1 key together with its bech32 account address
type Key struct {
	priv    *ecdsa.PrivateKey
	address string
}

// LoadKey builds a key from exactly one of mnemonic or hex private key
func LoadKey(mnemonic, privateKey, path, prefix string) (*Key, error) {
	switch {
	case mnemonic != "" && privateKey != "":
		return nil, fmt.Errorf("only one of mnemonic or private key can be used")
	case mnemonic != "":
		return KeyFromMnemonic(mnemonic, path, prefix)
	case privateKey != "":
		return KeyFromPrivateKey(privateKey, prefix)
	default:
		return nil, fmt.Errorf("no key material provided")
	}
}

// KeyFromMnemonic derives the key at path from a BIP-39 mnemonic without passphrase
func KeyFromMnemonic(mnemonic, path, prefix string) (*Key, error) {
	seed, err := bip39.NewSeedWithErrorChecking(strings.TrimSpace(mnemonic), "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	derivationPath, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
	}

	extended, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, index := range derivationPath {
		extended, err = extended.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", path, err)
		}
	}

	ecPriv, err := extended.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}

	priv, err := crypto.ToECDSA(ecPriv.Serialize())
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key: %w", err)
	}
	return newKey(priv, prefix)
}

// KeyFromPrivateKey loads a hex encoded private key, with or without 0x prefix
func KeyFromPrivateKey(hexKey, prefix string) (*Key, error) {
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return newKey(priv, prefix)
}

func newKey(priv *ecdsa.PrivateKey, prefix string) (*Key, error) {
	address, err := AddressFromPubKey(crypto.CompressPubkey(&priv.PublicKey), prefix)
	if err != nil {
		return nil, err
	}
	return &Key{priv: priv, address: address}, nil
}

// AddressFromPubKey returns the bech32 account address of a compressed public key
func AddressFromPubKey(compressed []byte, prefix string) (string, error) {
	if len(compressed) != 33 {
		return "", fmt.Errorf("expected 33 byte compressed public key, got %d", len(compressed))
	}

	sha := sha256.Sum256(compressed)
	hasher := ripemd160.New()
	hasher.Write(sha[:])
	accountBytes := hasher.Sum(nil)

	converted, err := bech32.ConvertBits(accountBytes, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert address bits: %w", err)
	}
	address, err := bech32.Encode(prefix, converted)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	return address, nil
}

// Address returns the bech32 account address
func (k *Key) Address() string {
	return k.address
}

// PubKey returns the compressed public key
func (k *Key) PubKey() []byte {
	return crypto.CompressPubkey(&k.priv.PublicKey)
}

// Sign signs sha256(msg) and returns the 64 byte r||s signature
func (k *Key) Sign(msg []byte) ([]byte, error) {
	hash := sha256.Sum256(msg)
	sig, err := crypto.Sign(hash[:], k.priv)
	if err != nil {
		return nil, err
	}
	return sig[:64], nil
}
