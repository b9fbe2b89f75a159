// Package cli wires the agentrep commands. All registry logic lives in
// internal/registry; this layer parses arguments and formats output.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/agentrep/internal/chains"
	"github.com/openclaw/agentrep/internal/config"
	"github.com/openclaw/agentrep/internal/registry"
	"github.com/openclaw/agentrep/internal/wallet"
)

var (
	chainsFile string
	logLevel   string
)

// Execute runs the CLI
func Execute(version string) error {
	rootCmd := &cobra.Command{
		Use:     "agentrep",
		Short:   "ERC-8004 reputation registry CLI",
		Long: `Agentrep reads and writes feedback records in the decentralized
ERC-8004 reputation layer for AI agents, across Base, Ethereum,
Polygon, Monad and BNB Chain.`,
		Version: version,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&chainsFile, "chains-file", "", "TOML file overriding chain RPC endpoints (default from AGENTREP_CHAINS_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from AGENTREP_LOG_LEVEL)")

	// Add subcommands
	rootCmd.AddCommand(createLookupCmd())
	rootCmd.AddCommand(createGiveCmd())
	rootCmd.AddCommand(createRevokeCmd())
	rootCmd.AddCommand(createRespondCmd())
	rootCmd.AddCommand(createClientsCmd())
	rootCmd.AddCommand(createMyRepCmd())
	rootCmd.AddCommand(createChainsCmd())
	rootCmd.AddCommand(createWalletCmd())

	return rootCmd.Execute()
}

// loadConfig merges environment configuration with global flags (flags
// win).
func loadConfig() *config.Config {
	cfg := config.Load()
	if chainsFile != "" {
		cfg.Chains.File = chainsFile
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func chainRegistry(cfg *config.Config) (*chains.Registry, error) {
	return chains.Load(cfg.Chains.File)
}

func clientOptions(cfg *config.Config, logger *slog.Logger) []registry.Option {
	return []registry.Option{
		registry.WithLogger(logger),
		registry.WithCallTimeout(time.Duration(cfg.RPC.CallTimeout) * time.Second),
		registry.WithReceiptTimeout(time.Duration(cfg.RPC.ReceiptTimeout) * time.Second),
		registry.WithRateLimit(float64(cfg.RPC.CallsPerSecond), cfg.RPC.Burst),
	}
}

// newClient builds a single-chain client for the --chain flag value
// (empty selects the default chain).
func newClient(cfg *config.Config, chainKey string) (*registry.Client, error) {
	reg, err := chainRegistry(cfg)
	if err != nil {
		return nil, err
	}
	desc, err := reg.Resolve(chainKey)
	if err != nil {
		return nil, err
	}
	return registry.New(desc, clientOptions(cfg, newLogger(cfg))...), nil
}

// credential resolves the signing credential for write commands.
func credential(cfg *config.Config) (*wallet.Credential, error) {
	cred, err := wallet.Resolve(cfg.Source())
	if err != nil {
		if errors.Is(err, wallet.ErrNoCredential) {
			return nil, fmt.Errorf("wallet not configured: set %s or %s", config.EnvMnemonic, config.EnvPrivateKey)
		}
		return nil, err
	}
	return cred, nil
}

// withCredential resolves the signing credential, runs fn with it, and
// zeroes the key material on every path, error paths included.
func withCredential(cfg *config.Config, fn func(*wallet.Credential) error) error {
	cred, err := credential(cfg)
	if err != nil {
		return err
	}
	defer cred.Destroy()
	return fn(cred)
}
