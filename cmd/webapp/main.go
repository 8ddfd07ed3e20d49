package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrew/rag-webapp/pkg/chat"
	"github.com/andrew/rag-webapp/pkg/config"
	"github.com/andrew/rag-webapp/pkg/logging"
	"github.com/andrew/rag-webapp/pkg/web"
	"github.com/andrew/rag-webapp/pkg/wiring"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:          "webapp",
		Short:        "Serve the chat page and forward questions to the webhook",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.ApplyFile(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	cfg.AddFlags(rootCmd.Flags())
	rootCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Address to listen on (env ADDR)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, closer, err := logging.Setup(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctrl, err := wiring.NewController(cfg, logger)
	if err != nil {
		return err
	}
	server := web.NewServer(chat.NewSession(ctrl), logger.With().Str("component", "web").Logger())

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("mode", string(ctrl.Mode())).
			Str("webhook", ctrl.WebhookURL()).
			Msg("starting chat web server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server error")
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server shutdown failed")
		}
		return nil
	})

	return eg.Wait()
}
