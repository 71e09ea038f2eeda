package cmd

import "github.com/spf13/cobra"

var RootCmd = &cobra.Command{
	Use:   "hashvote",
	Short: "Proof-of-work voting ledger",
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file to use.")
}

func Run(args []string) error {
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}
