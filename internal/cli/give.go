package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openclaw/agentrep/internal/codec"
	"github.com/openclaw/agentrep/internal/registry"
	"github.com/openclaw/agentrep/internal/wallet"
)

func createGiveCmd() *cobra.Command {
	var chain string
	var tag1, tag2 string
	var decimals int

	cmd := &cobra.Command{
		Use:   "give <agentId> <value>",
		Short: "Give feedback to an agent",
		Long: `Submit a feedback entry for an agent. The value must be between
0 and 100, scaled by --decimals (e.g. --decimals 2 makes 8550 mean 85.50).

Requires a configured wallet (ERC8004_MNEMONIC or ERC8004_PRIVATE_KEY).

EXAMPLES:
  agentrep give 23983 85 --tag1 trust --tag2 oracle-screening
  agentrep give 0x1234...abcd 9275 --decimals 2 --chain polygon
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := registry.ParseAgentRef(args[0])
			if err != nil {
				return err
			}
			raw, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			value, err := codec.EncodeValue(raw, decimals)
			if err != nil {
				return err
			}

			var tags []string
			for _, t := range []string{tag1, tag2} {
				if t != "" {
					tags = append(tags, t)
				}
			}

			cfg := loadConfig()
			c, err := newClient(cfg, chain)
			if err != nil {
				return err
			}

			return withCredential(cfg, func(cred *wallet.Credential) error {
				fmt.Println("Submitting feedback...")
				rcpt, err := c.GiveFeedback(context.Background(), ref, value, tags, cred)
				if err != nil {
					return err
				}

				fmt.Println("Feedback submitted")
				fmt.Printf("  Agent: %s\n", ref)
				fmt.Printf("  Value: %s\n", value)
				if len(tags) > 0 {
					fmt.Printf("  Tags: %s\n", strings.Join(tags, ", "))
				}
				fmt.Printf("  Tx: %s\n", rcpt.TxHash.Hex())
				fmt.Printf("  Gas: %s\n", formatWei(rcpt.Cost, c.Chain().Symbol))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "chain key (default: base)")
	cmd.Flags().StringVar(&tag1, "tag1", "", "first tag (optional)")
	cmd.Flags().StringVar(&tag2, "tag2", "", "second tag (optional)")
	cmd.Flags().IntVar(&decimals, "decimals", 0, "implied fractional digits in the value")

	return cmd
}
