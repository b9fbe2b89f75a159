package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/agentrep/internal/registry"
)

func createClientsCmd() *cobra.Command {
	var (
		chain   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "clients <agentId>",
		Short: "List addresses that have given feedback for an agent",
		Long: `List every address that has submitted feedback for an agent on one
chain, in the order the contract recorded them.

EXAMPLES:
  agentrep clients 23983
  agentrep clients 0x1234...abcd --chain polygon --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := registry.ParseAgentRef(args[0])
			if err != nil {
				return err
			}

			c, err := newClient(loadConfig(), chain)
			if err != nil {
				return err
			}

			addrs, err := c.ListClients(context.Background(), ref)
			if err != nil {
				return err
			}

			if jsonOut {
				hexes := make([]string, len(addrs))
				for i, a := range addrs {
					hexes[i] = a.Hex()
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(hexes)
			}

			if len(addrs) == 0 {
				fmt.Printf("No reviewers on %s\n", c.Chain().DisplayName)
				return nil
			}
			fmt.Printf("%d reviewer(s) on %s:\n", len(addrs), c.Chain().DisplayName)
			for _, a := range addrs {
				fmt.Printf("  %s\n", a.Hex())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "chain key (default: base)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
