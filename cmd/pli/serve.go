package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vilakshan/pli-leaderboard/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the public leaderboard and admin config HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		settings := app.Settings

		authn := api.NewAuthenticator(settings.JWTSecret)
		router := api.NewRouter(app.Handler, api.RouterOptions{
			Authenticator:  authn,
			AllowedOrigins: settings.CORSOrigins,
			Metrics:        app.Metrics,
			LeaderboardRPS: settings.LeaderboardRPS,
		})

		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", settings.HTTPPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		metricsServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", settings.MetricsPort),
			Handler: promhttp.Handler(),
		}

		go func() {
			app.Log.Info().Int("port", settings.HTTPPort).Msg("leaderboard api starting")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				app.Log.Fatal().Err(err).Msg("api server failed")
			}
		}()
		go func() {
			app.Log.Info().Int("port", settings.MetricsPort).Msg("metrics endpoint starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				app.Log.Error().Err(err).Msg("metrics server failed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		app.Log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(ctx)
		if err := server.Shutdown(ctx); err != nil {
			return err
		}
		app.Log.Info().Msg("server stopped")
		return nil
	},
}
