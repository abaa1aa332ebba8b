package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/acpoke/acpoke-bridge/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves POST /api/poke and the supporting endpoints until interrupted.
Idle cooldown entries are pruned in the background.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	apiServer := api.NewServer(a.poke, a.repos.Action, a.repos.Directory, cfg.API.Listen, logger.Named("api"))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiServer.Start(ctx)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})

	g.Go(func() error {
		pruneCooldowns(ctx, a, time.Minute)
		return nil
	})

	return g.Wait()
}

// pruneCooldowns drops expired cooldown entries until ctx is done
func pruneCooldowns(ctx context.Context, a *app, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cooldown := a.poke.Cooldown()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := cooldown.Prune(); n > 0 {
				logger.Debug("pruned cooldown entries", zap.Int("count", n))
			}
		}
	}
}
