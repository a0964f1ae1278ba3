package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	feedprobe "feed-gallery/agents/feed-probe"
	"feed-gallery/shared/config"
	"feed-gallery/shared/monitoring"
	"feed-gallery/shared/scheduler"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func probeCmd() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Check that the upstream feeds return real content",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single probe and exit non-zero if every feed failed",
			},
		},
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
			agent := feedprobe.NewFeedProbeAgent(cfg, ing)
			s := scheduler.New(cfg, agent, monitor)

			if ctx.Bool("once") {
				log.Info("Running once...")
				if err := agent.Initialize(); err != nil {
					return fmt.Errorf("failed to initialize agent: %w", err)
				}
				if err := s.RunOnce(runCtx); err != nil {
					return err
				}
				fmt.Println(monitor.GetStatusSummary())
				return nil
			}

			log.Info("Starting scheduler...")
			if err := s.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler failed: %w", err)
			}
			return nil
		},
	}
}
