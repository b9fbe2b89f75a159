package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openclaw/agentrep/internal/config"
	"github.com/openclaw/agentrep/internal/registry"
)

func createMyRepCmd() *cobra.Command {
	var (
		chainList string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "my-rep [agentId]",
		Short: "Show an agent's reputation across chains",
		Long: `Look an agent up on every chain (or a comma-separated subset) and
print a per-chain reputation summary. Without an argument the
configured wallet's address is looked up. Chains that cannot be
reached are reported individually without hiding the rest.

EXAMPLES:
  agentrep my-rep 23983
  agentrep my-rep 0x1234...abcd --chains base,polygon --json
  agentrep my-rep
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ref, err := myRepRef(cfg, args)
			if err != nil {
				return err
			}

			reg, err := chainRegistry(cfg)
			if err != nil {
				return err
			}
			agg := registry.NewAggregator(reg, clientOptions(cfg, newLogger(cfg))...)

			var keys []string
			if chainList != "" {
				for _, k := range strings.Split(chainList, ",") {
					keys = append(keys, strings.TrimSpace(k))
				}
			}

			results, err := agg.QueryAll(context.Background(), ref, keys)
			if err != nil {
				return err
			}

			if jsonOut {
				return printMyRepJSON(results)
			}

			fmt.Printf("Reputation for %s\n\n", ref)
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("%-12s unavailable: %v\n", r.Chain.DisplayName, r.Err)
					continue
				}
				if r.Summary.FeedbackCount == 0 {
					fmt.Printf("%-12s no feedback yet\n", r.Chain.DisplayName)
					continue
				}
				fmt.Printf("%-12s %s avg over %d entries from %d reviewer(s)\n",
					r.Chain.DisplayName, r.Summary.Average, r.Summary.FeedbackCount, r.Summary.ReviewerCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chainList, "chains", "", "comma-separated chain keys (default: all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}

// myRepRef picks the agent to look up: the explicit argument, or the
// configured wallet's address. The lookup itself is read-only, so the
// fallback derives the key only to take its address and zeroes it
// right away.
func myRepRef(cfg *config.Config, args []string) (registry.AgentRef, error) {
	if len(args) == 1 {
		return registry.ParseAgentRef(args[0])
	}
	cred, err := credential(cfg)
	if err != nil {
		return registry.AgentRef{}, err
	}
	addr := cred.Address.Hex()
	cred.Destroy()
	return registry.ParseAgentRef(addr)
}

type myRepRow struct {
	Chain   string            `json:"chain"`
	Summary *registry.Summary `json:"summary,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func printMyRepJSON(results []registry.ChainResult) error {
	rows := make([]myRepRow, len(results))
	for i, r := range results {
		rows[i] = myRepRow{Chain: r.Chain.Key, Summary: r.Summary}
		if r.Err != nil {
			rows[i].Error = r.Err.Error()
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
