package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/openclaw/agentrep/internal/registry"
	"github.com/openclaw/agentrep/internal/validation"
	"github.com/openclaw/agentrep/internal/wallet"
)

func createRespondCmd() *cobra.Command {
	var chain string

	cmd := &cobra.Command{
		Use:   "respond <agentId> <reviewer> <feedbackIndex> <text>",
		Short: "Append a response to a feedback entry",
		Long: `Append a public response to a feedback entry, identified by the
reviewer's address and their entry index.

EXAMPLES:
  agentrep respond 23983 0xAbc...123 0 "resolved, please re-review"
`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := registry.ParseAgentRef(args[0])
			if err != nil {
				return err
			}
			if err := validation.ValidateAddress(args[1]); err != nil {
				return fmt.Errorf("invalid reviewer address: %w", err)
			}
			reviewer := common.HexToAddress(args[1])
			index, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid feedback index %q: %w", args[2], err)
			}

			cfg := loadConfig()
			c, err := newClient(cfg, chain)
			if err != nil {
				return err
			}

			return withCredential(cfg, func(cred *wallet.Credential) error {
				fmt.Println("Appending response...")
				rcpt, err := c.AppendResponse(context.Background(), ref, reviewer, index, args[3], cred)
				if err != nil {
					return err
				}

				fmt.Println("Response appended")
				fmt.Printf("  Tx: %s\n", rcpt.TxHash.Hex())
				fmt.Printf("  Gas: %s\n", formatWei(rcpt.Cost, c.Chain().Symbol))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "chain key (default: base)")

	return cmd
}
