package cli

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/agentrep/internal/config"
	"github.com/openclaw/agentrep/internal/wallet"
)

// Hardhat account #0.
const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestFormatWei(t *testing.T) {
	tests := []struct {
		name   string
		wei    *big.Int
		symbol string
		want   string
	}{
		{
			name:   "nil cost",
			wei:    nil,
			symbol: "ETH",
			want:   "0 ETH",
		},
		{
			name:   "whole token",
			wei:    new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
			symbol: "ETH",
			want:   "1.000000 ETH",
		},
		{
			name:   "typical gas cost",
			wei:    big.NewInt(50000000000000), // 50000 gas at 1 gwei
			symbol: "POL",
			want:   "0.000050 POL",
		},
		{
			name:   "rounds below six digits",
			wei:    big.NewInt(1),
			symbol: "BNB",
			want:   "0.000000 BNB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatWei(tt.wei, tt.symbol))
		})
	}
}

func TestTagLine(t *testing.T) {
	counts := map[string]int{
		"trust":            3,
		"oracle-screening": 3,
		"speed":            1,
		"accuracy":         7,
	}
	assert.Equal(t, "accuracy (7), oracle-screening (3), trust (3), speed (1)", tagLine(counts))
}

func TestTagLineCapsAtFive(t *testing.T) {
	counts := map[string]int{
		"a": 6, "b": 5, "c": 4, "d": 3, "e": 2, "f": 1,
	}
	assert.Equal(t, "a (6), b (5), c (4), d (3), e (2)", tagLine(counts))
}

func TestTagLineEmpty(t *testing.T) {
	assert.Equal(t, "", tagLine(nil))
}

func TestLoadConfigFlagsWin(t *testing.T) {
	t.Setenv("AGENTREP_CHAINS_FILE", "/from/env.toml")
	t.Setenv("AGENTREP_LOG_LEVEL", "info")

	origChains, origLevel := chainsFile, logLevel
	t.Cleanup(func() {
		chainsFile, logLevel = origChains, origLevel
	})

	chainsFile = ""
	logLevel = ""
	cfg := loadConfig()
	assert.Equal(t, "/from/env.toml", cfg.Chains.File)
	assert.Equal(t, "info", cfg.Logging.Level)

	chainsFile = "/from/flag.toml"
	logLevel = "debug"
	cfg = loadConfig()
	assert.Equal(t, "/from/flag.toml", cfg.Chains.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestMyRepRefArgumentSkipsWallet(t *testing.T) {
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvPrivateKey, "")

	ref, err := myRepRef(config.Load(), []string{"23983"})
	require.NoError(t, err)
	assert.Equal(t, "23983", ref.String())

	ref, err = myRepRef(config.Load(), []string{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"})
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", ref.String())
}

func TestMyRepRefFallsBackToWalletAddress(t *testing.T) {
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvPrivateKey, testPrivateKey)

	ref, err := myRepRef(config.Load(), nil)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", ref.String())
}

func TestMyRepRefNoArgumentNoWallet(t *testing.T) {
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvPrivateKey, "")

	_, err := myRepRef(config.Load(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvMnemonic)
}

func TestWithCredentialDestroysKeyOnError(t *testing.T) {
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvPrivateKey, testPrivateKey)

	var captured *wallet.Credential
	err := withCredential(config.Load(), func(cred *wallet.Credential) error {
		captured = cred
		return errors.New("dial failed")
	})
	require.EqualError(t, err, "dial failed")

	require.NotNil(t, captured)
	_, err = captured.SignTx(types.NewTx(&types.LegacyTx{}), big.NewInt(1))
	assert.ErrorIs(t, err, wallet.ErrInvalidCredential)
}

func TestWithCredentialDestroysKeyOnSuccess(t *testing.T) {
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvPrivateKey, testPrivateKey)

	var captured *wallet.Credential
	err := withCredential(config.Load(), func(cred *wallet.Credential) error {
		captured = cred
		return nil
	})
	require.NoError(t, err)

	_, err = captured.SignTx(types.NewTx(&types.LegacyTx{}), big.NewInt(1))
	assert.ErrorIs(t, err, wallet.ErrInvalidCredential)
}

func TestCredentialWithoutWallet(t *testing.T) {
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvPrivateKey, "")

	_, err := credential(config.Load())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvMnemonic)
	assert.Contains(t, err.Error(), config.EnvPrivateKey)
}

func TestNewClientRejectsUnknownChain(t *testing.T) {
	t.Setenv("AGENTREP_CHAINS_FILE", "")
	_, err := newClient(config.Load(), "solana")
	assert.Error(t, err)
}

func TestNewClientDefaultsToBase(t *testing.T) {
	t.Setenv("AGENTREP_CHAINS_FILE", "")
	c, err := newClient(config.Load(), "")
	require.NoError(t, err)
	assert.Equal(t, "base", c.Chain().Key)
}
