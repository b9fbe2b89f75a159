// Package wallet resolves the signing credential used for
// state-changing registry calls.
//
// Exactly two secret sources are supported, checked in fixed priority
// order: a BIP-39 seed phrase, then a raw hex private key. Read-only
// commands never touch this package.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

var (
	// ErrNoCredential is returned when neither secret source is set.
	ErrNoCredential = errors.New("no credential configured")
	// ErrInvalidCredential is returned for a malformed seed phrase or key.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Source is the tagged-variant credential configuration: at most one
// field is consulted, Mnemonic before PrivateKey.
type Source struct {
	Mnemonic   string
	PrivateKey string
}

// Credential is a resolved signing identity. The key never leaves this
// package; callers sign through SignTx and call Destroy when the signed
// transaction has been submitted.
type Credential struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// Resolve derives a credential from the first populated secret source.
func Resolve(src Source) (*Credential, error) {
	switch {
	case src.Mnemonic != "":
		return fromMnemonic(src.Mnemonic)
	case src.PrivateKey != "":
		return fromPrivateKey(src.PrivateKey)
	default:
		return nil, ErrNoCredential
	}
}

// fromMnemonic derives the account at the standard Ethereum wallet path
// m/44'/60'/0'/0/0.
func fromMnemonic(mnemonic string) (*Credential, error) {
	seed, err := bip39.NewSeedWithErrorChecking(strings.TrimSpace(mnemonic), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart + 0,
		0,
		0,
	}
	for _, n := range path {
		key, err = key.Derive(n)
		if err != nil {
			return nil, fmt.Errorf("%w: deriving account: %v", ErrInvalidCredential, err)
		}
	}

	ecPriv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	priv := ecPriv.ToECDSA()

	return &Credential{
		Address: crypto.PubkeyToAddress(priv.PublicKey),
		key:     priv,
	}, nil
}

// fromPrivateKey loads a raw secp256k1 key, with or without a leading
// 0x marker.
func fromPrivateKey(raw string) (*Credential, error) {
	hexKey := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if len(hexKey) != 64 {
		return nil, fmt.Errorf("%w: private key must be 64 hex characters, got %d", ErrInvalidCredential, len(hexKey))
	}

	priv, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	return &Credential{
		Address: crypto.PubkeyToAddress(priv.PublicKey),
		key:     priv,
	}, nil
}

// SignTx signs a transaction for the given chain. Fails after Destroy.
func (c *Credential) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if c.key == nil {
		return nil, fmt.Errorf("%w: credential destroyed", ErrInvalidCredential)
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
}

// Destroy overwrites the key material. The credential cannot sign
// afterwards; resolve again for the next write.
func (c *Credential) Destroy() {
	if c.key != nil {
		c.key.D.SetInt64(0)
		c.key = nil
	}
}
