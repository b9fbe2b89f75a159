// Package config loads agentrep's process-wide configuration from
// environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/openclaw/agentrep/internal/wallet"
)

// Wallet env vars follow the registry skill convention; everything
// else is namespaced under AGENTREP_.
const (
	EnvMnemonic   = "ERC8004_MNEMONIC"
	EnvPrivateKey = "ERC8004_PRIVATE_KEY"
)

// Config holds all configuration for the CLI
type Config struct {
	Wallet  WalletConfig
	Chains  ChainsConfig
	Logging LoggingConfig
	RPC     RPCConfig
}

// WalletConfig holds the two supported secret sources. At most one is
// used; the seed phrase wins when both are set.
type WalletConfig struct {
	Mnemonic   string
	PrivateKey string
}

// ChainsConfig holds the optional chain-table override file
type ChainsConfig struct {
	File string // TOML file with per-chain RPC overrides
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

// RPCConfig holds network behavior settings
type RPCConfig struct {
	CallTimeout    int // seconds, per RPC round-trip
	ReceiptTimeout int // seconds, waiting for a transaction receipt
	CallsPerSecond int // read-path rate limit against public endpoints
	Burst          int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Wallet: WalletConfig{
			Mnemonic:   getEnv(EnvMnemonic, ""),
			PrivateKey: getEnv(EnvPrivateKey, ""),
		},
		Chains: ChainsConfig{
			File: getEnv("AGENTREP_CHAINS_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("AGENTREP_LOG_LEVEL", "warn"),
			Format: getEnv("AGENTREP_LOG_FORMAT", "text"),
		},
		RPC: RPCConfig{
			CallTimeout:    getEnvInt("AGENTREP_RPC_CALL_TIMEOUT", 15),
			ReceiptTimeout: getEnvInt("AGENTREP_RPC_RECEIPT_TIMEOUT", 120),
			CallsPerSecond: getEnvInt("AGENTREP_RPC_CALLS_PER_SECOND", 10),
			Burst:          getEnvInt("AGENTREP_RPC_BURST", 5),
		},
	}
}

// Source returns the credential source for write operations. Read-only
// commands never call this.
func (c *Config) Source() wallet.Source {
	return wallet.Source{
		Mnemonic:   c.Wallet.Mnemonic,
		PrivateKey: c.Wallet.PrivateKey,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
