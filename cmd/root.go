package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/config"
	"github.com/elilinden/Support-bot/internal/logging"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "opcoach",
	Short: "Order of Protection preparation coach for NY Family Court",
	Long: `opcoach helps a petitioner prepare an Order of Protection petition in
New York Family Court. It interviews the user, extracts case facts into a
structured record, builds a timeline and drafts court preparation material.
It screens every message for immediate danger first.

This is educational information only, not legal advice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w\nRun `opcoach init` to create a config file", err)
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
