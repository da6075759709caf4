package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elilinden/Support-bot/internal/api"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/server"
)

var serverPort int

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the coaching HTTP and websocket server",
	Long:  `Starts the opcoach server with the stateless coach endpoint, stored case sessions, uploads, case summaries, the turn audit trail and a websocket coach channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, b, err := loadService(ctx)
		if err != nil {
			return err
		}
		defer b.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:           port,
			AllowAll:       cfg.Server.AllowAllOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, api.NewHandler(svc, logger.Named("http")), b.audit, logger.Named("server"))

		health := svc.Health()
		logger.Info("starting opcoach server",
			zap.String("version", Version),
			zap.Int("port", port),
			zap.String("provider", health.Provider),
			zap.String("model", health.Model),
			zap.String("provider_status", string(health.Status)),
			zap.String("store", string(cfg.Store.Backend)))
		if health.Status == llm.HealthMissingKey {
			logger.Warn("no API key configured; coaching calls will fail until one is set")
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		if b.audit != nil {
			g.Go(func() error {
				return b.audit.Sweep(gctx, cfg.Audit.Retention, cfg.Audit.SweepInterval, logger.Named("audit"))
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		})
		return g.Wait()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
