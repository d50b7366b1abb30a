package cmd

import (
	"os"

	"github.com/proxyfig/proxyfig/cmd/convert"
	"github.com/proxyfig/proxyfig/cmd/parse"
	"github.com/proxyfig/proxyfig/cmd/subs"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "proxyfig",
	Short:   "Converts proxy share links into sing-box routing configurations",
	Long:    ``,
	Version: "1.0.0",

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func addSubcommandPalettes() {
	rootCmd.AddCommand(convert.ConvertCmd)
	rootCmd.AddCommand(parse.ParseCmd)
	rootCmd.AddCommand(subs.SubsCmd)
}

func init() {
	addSubcommandPalettes()
}
