package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openclaw/agentrep/internal/registry"
	"github.com/openclaw/agentrep/internal/wallet"
)

func createRevokeCmd() *cobra.Command {
	var chain string

	cmd := &cobra.Command{
		Use:   "revoke <agentId> <feedbackIndex>",
		Short: "Revoke feedback you previously gave",
		Long: `Revoke one of your own feedback entries for an agent. The index
counts your entries for that agent, starting at 0. Revocation is
one-way: the entry stays on chain, marked withdrawn.

EXAMPLES:
  agentrep revoke 23983 3
  agentrep revoke 0x1234...abcd 0 --chain bnb
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := registry.ParseAgentRef(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid feedback index %q: %w", args[1], err)
			}

			cfg := loadConfig()
			c, err := newClient(cfg, chain)
			if err != nil {
				return err
			}

			return withCredential(cfg, func(cred *wallet.Credential) error {
				fmt.Println("Revoking feedback...")
				rcpt, err := c.RevokeFeedback(context.Background(), ref, index, cred)
				if err != nil {
					return err
				}

				fmt.Println("Feedback revoked")
				fmt.Printf("  Agent: %s\n", ref)
				fmt.Printf("  Index: %d\n", index)
				fmt.Printf("  Tx: %s\n", rcpt.TxHash.Hex())
				fmt.Printf("  Gas: %s\n", formatWei(rcpt.Cost, c.Chain().Symbol))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "chain key (default: base)")

	return cmd
}
