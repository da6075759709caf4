package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elilinden/Support-bot/internal/danger"
	"github.com/elilinden/Support-bot/internal/llm"
)

// Version is set via ldflags at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the opcoach version and the active danger pattern set",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "opcoach %s\n", Version)
		fmt.Fprintf(out, "danger patterns %s\n", danger.PatternVersion)
		if cfg != nil {
			h := llm.CheckHealth(cfg.LLMOptions())
			fmt.Fprintf(out, "provider %s (%s, %s)\n", h.Provider, h.Model, h.Status)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
