package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"roster/internal/platform/config"
	"roster/internal/platform/httpserver"
	"roster/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "User record service",
	Long: `roster validates user records, assigns sequential identifiers and serves
create, read, update and delete over HTTP.

Configuration is read from the environment, optionally seeded from a .env file:

` + config.Usage(),
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			return err
		}
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("env-file", ".env", "optional dotenv file loaded before the environment")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve wires dependencies and runs until ctx is cancelled.
func serve(ctx context.Context, cfg config.Server) error {
	log := logger.New(cfg.Log)

	a, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	srv := httpserver.New(cfg.Addr, a.router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.ShutdownTimeout, log)
	})
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
