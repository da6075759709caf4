package cmd

import (
	"github.com/spf13/cobra"

	"github.com/elilinden/Support-bot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize opcoach configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the model provider, session store and defaults, and writes them to .opcoach.yml (or the --config path).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
