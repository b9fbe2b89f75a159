package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openclaw/agentrep/internal/wallet"
)

func createWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show the configured wallet address",
		Long: `Show the address derived from the configured wallet. When no wallet
is configured through the environment, prompt for a private key or
mnemonic without echoing it. Nothing is persisted and the secret is
never printed.

EXAMPLES:
  agentrep wallet
  ERC8004_MNEMONIC="..." agentrep wallet
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			cred, err := wallet.Resolve(cfg.Source())
			if errors.Is(err, wallet.ErrNoCredential) {
				cred, err = promptCredential()
			}
			if err != nil {
				return err
			}
			defer cred.Destroy()

			fmt.Printf("Address: %s\n", cred.Address.Hex())
			return nil
		},
	}

	return cmd
}

// promptCredential asks for a mnemonic or private key on stdin. Echo
// is disabled when stdin is a terminal.
func promptCredential() (*wallet.Credential, error) {
	fmt.Print("Enter mnemonic or private key: ")

	var secret string
	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		bytes, err := term.ReadPassword(stdinFd)
		fmt.Println() // New line after hidden input
		if err != nil {
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
		secret = string(bytes)
	} else {
		// Non-terminal, read from stdin
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
		secret = strings.TrimSpace(line)
	}

	if secret == "" {
		return nil, wallet.ErrNoCredential
	}

	// A mnemonic has spaces, a private key does not.
	src := wallet.Source{PrivateKey: secret}
	if strings.Contains(secret, " ") {
		src = wallet.Source{Mnemonic: secret}
	}
	return wallet.Resolve(src)
}
