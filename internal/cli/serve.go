package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weatherboard/internal/api/http"
	"github.com/i474232898/weatherboard/internal/autocomplete"
	"github.com/i474232898/weatherboard/internal/chess"
	"github.com/i474232898/weatherboard/internal/scheduler"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the weather, autocomplete and chess API over HTTP",
		Run:   runServe,
	}
	cmd.Flags().Bool("access-log", true, "Log every HTTP request")
	cmd.Flags().Int("max-sessions", 256, "Maximum open autocomplete sessions")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	accessLog, _ := cmd.Flags().GetBool("access-log")
	maxSessions, _ := cmd.Flags().GetInt("max-sessions")

	a, err := buildApp(true)
	if err != nil {
		exitErr("load config", err)
	}

	sessions := autocomplete.NewSessions(a.geo, a.service, a.autocompleteOptions(), maxSessions, a.metrics)
	defer sessions.CloseAll()

	game := chess.NewGame(chess.NewStandardEngine())
	sched := scheduler.New(game, a.cfg.ChessTick, a.logger)
	if err := sched.Start(); err != nil {
		exitErr("start scheduler", err)
	}
	defer sched.Stop()

	server := httpapi.NewApp(httpapi.Deps{
		Weather:       a.service,
		Sessions:      sessions,
		Chess:         game,
		Gatherer:      prometheus.DefaultGatherer,
		LookupTimeout: a.cfg.HTTPTimeout * 2,
		AccessLog:     accessLog,
		Logger:        a.logger,
	})

	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Addr())
		if err := server.Listen(a.cfg.Addr()); err != nil {
			a.logger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", "error", err)
	}
}
