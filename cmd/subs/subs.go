package subs

import (
	"github.com/spf13/cobra"
)

// SubsCmd represents the subs command
var SubsCmd = &cobra.Command{
	Use:   "subs",
	Short: "Subscription tool",
	Long: `
fetch: fetches all config links from the subscription url to a file
`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func addSubcommandPalettes() {
	SubsCmd.AddCommand(NewFetchCommand())
}

func init() {
	addSubcommandPalettes()
}
