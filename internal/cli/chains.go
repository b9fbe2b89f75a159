package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func createChainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List the configured chains",
		Long: `List every chain the tool knows about, including RPC overrides from
the chains file.

EXAMPLES:
  agentrep chains
  agentrep chains --chains-file ./chains.toml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := chainRegistry(loadConfig())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tCHAIN ID\tSYMBOL\tRPC")
			for _, d := range reg.All() {
				key := d.Key
				if d.IsDefault {
					key += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", key, d.DisplayName, d.ChainID, d.Symbol, d.RPCURL)
			}
			return w.Flush()
		},
	}

	return cmd
}
