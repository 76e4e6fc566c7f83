package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/relayforge/subconverter/cmd/convert"
	"github.com/relayforge/subconverter/cmd/ruleset"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "subconverter",
	Short:   "Converts proxy subscriptions between client formats",
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
	rootCmd.AddCommand(ruleset.RulesetCmd)
}

func init() {
	addSubcommandPalettes()
}
