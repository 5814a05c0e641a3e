package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rawmem/connector"
)

var argsCmd = &cobra.Command{
	Use:   "args [ARGSTRING]",
	Short: "Explain the connector arguments.",
	Long: `Print the help of the connector. If an argument string is given, ` +
		`print how it is parsed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Print(connector.Help())
			return nil
		}

		parsed, err := connector.ParseArgs(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("target: %s\n", parsed.Target)

		keys := make([]string, 0, len(parsed.Extra))
		for k := range parsed.Extra {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			fmt.Printf("%s: %s\n", k, parsed.Extra[k])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(argsCmd)
}
