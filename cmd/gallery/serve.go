package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	feedprobe "feed-gallery/agents/feed-probe"
	"feed-gallery/internal/server"
	"feed-gallery/shared/config"
	"feed-gallery/shared/monitoring"
	"feed-gallery/shared/scheduler"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the gallery API and static site",
		Description: `Starts the HTTP server on the configured port. When
monitoring.probe_enabled is set, the feed probe also runs on the configured
schedule and its result is reported on /health and /status.`,
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			runCtx, cancel := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ing, err := newIngestor(runCtx, cfg)
			if err != nil {
				return err
			}

			monitor := monitoring.NewMonitor()
			app := server.Server(&server.ServerConfig{
				Feeds:       ing,
				Monitor:     monitor,
				StaticDir:   cfg.HTTP.StaticDir,
				CacheMaxAge: cfg.HTTP.CacheMaxAge,
			})

			if cfg.Monitoring.ProbeEnabled {
				s := scheduler.New(cfg, feedprobe.NewFeedProbeAgent(cfg, ing), monitor)
				go func() {
					if err := s.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
						log.Errorf("Scheduler failed: %v", err)
					}
				}()
			}

			go func() {
				<-runCtx.Done()
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Errorf("Shutdown failed: %v", err)
				}
			}()

			addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
			log.WithFields(log.Fields{
				"addr":      addr,
				"playlists": len(cfg.Feeds.PlaylistURLs),
				"static":    cfg.HTTP.StaticDir,
			}).Info("Starting server")
			return app.Listen(addr)
		},
	}
}
