package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/elilinden/Support-bot/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the danger check, reply parser and stateless coaching turn as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		c, health, err := createCoachFromConfig(cfg, logger)
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "opcoach MCP server started on stdio (provider=%s, status=%s)\n", health.Provider, health.Status)

		srv := mcpserver.NewServer(c, logger.Named("mcp"))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
