package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/agentrep/internal/registry"
)

func createLookupCmd() *cobra.Command {
	var chain string
	var jsonOutput bool
	var showEntries bool

	cmd := &cobra.Command{
		Use:   "lookup <agentId>",
		Short: "Look up an agent's reputation",
		Long: `Look up an agent's reputation summary on one chain.

The agent may be given as its numeric registry id or its 0x address.

EXAMPLES:
  # Summary on the default chain (Base)
  agentrep lookup 16700

  # Summary on Polygon, with individual feedback entries
  agentrep lookup 0x1234...abcd --chain polygon --entries
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

			res, err := c.Lookup(context.Background(), ref)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			printLookup(c.Chain().DisplayName, res, showEntries)
			return nil
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "chain key (default: base)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&showEntries, "entries", false, "list individual feedback entries")

	return cmd
}

func printLookup(chainName string, res *registry.LookupResult, showEntries bool) {
	s := res.Summary
	fmt.Printf("Agent: %s\n", s.Agent)
	fmt.Printf("Chain: %s (%s)\n", s.Chain, chainName)

	if s.FeedbackCount == 0 {
		fmt.Println("Score: No feedback yet")
		return
	}

	fmt.Printf("Score: %s (%d reviews from %d reviewers)\n", s.Average, s.FeedbackCount, s.ReviewerCount)
	if len(res.TagCounts) > 0 {
		fmt.Printf("Tags: %s\n", tagLine(res.TagCounts))
	}

	if showEntries {
		fmt.Println()
		for _, e := range res.Entries {
			status := ""
			if e.Revoked {
				status = " [revoked]"
			}
			tags := ""
			for _, t := range e.Tags {
				tags += " #" + t
			}
			fmt.Printf("  %s #%d: %s%s%s\n", e.From, e.Index, e.Value, tags, status)
		}
	}
}
