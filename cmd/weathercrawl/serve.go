package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/autoupdate"
	"github.com/user/weather-crawler/internal/delivery/http/handler"
	"github.com/user/weather-crawler/internal/delivery/http/router"
)

const shutdownTimeout = 10 * time.Second

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled incremental updates",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	apiHandler := handler.NewHandler(a.ingestor, a.reporter, cfg.LocationName, log.With(zap.String("component", "api")))
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(apiHandler, a.metrics, a.registry, log),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Running ingestions stop when the process is signalled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	var updater *autoupdate.Updater
	if cfg.UpdateSchedule != "" {
		updater = autoupdate.New(a.ingestor, 0, log)
		if err := updater.Schedule(cfg.UpdateSchedule); err != nil {
			return err
		}
		updater.Start()
		defer updater.Stop()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exiting")
	return nil
}
