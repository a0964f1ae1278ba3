package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"feed-gallery/internal/ingest"
	"feed-gallery/shared/config"
	"feed-gallery/shared/youtube"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := rootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func rootApp() *cli.App {
	return &cli.App{
		Name:  "gallery",
		Usage: "Serve the window projection video gallery",
		Description: `Fetches the channel and playlist feeds from YouTube and serves them
as normalized JSON under /api/youtube, next to the pre-built site.

Every feed failure is replaced by placeholder content, so the API always
answers with something to render.

Settings are read from config.yaml (or CONFIG_FILE) and can be overridden
via environment variables, e.g.:

--config => CONFIG_FILE=config.yaml
PORT=8080
YOUTUBE_API_KEY=...`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the YAML config file",
				EnvVars: []string{"CONFIG_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)

			if path := ctx.String("config"); path != "" {
				return os.Setenv("CONFIG_FILE", path)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			fetchCmd(),
			probeCmd(),
		},
	}
}

// newIngestor builds the feed ingestor from config, with Data API enrichment
// when credentials are configured.
func newIngestor(ctx context.Context, cfg *config.Config) (*ingest.Ingestor, error) {
	opts := []ingest.Option{
		ingest.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
	}

	if cfg.YouTube.Enabled() {
		client, err := youtube.NewClient(ctx, &cfg.YouTube)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube client: %w", err)
		}
		opts = append(opts, ingest.WithEnricher(client))
		log.Info("YouTube Data API enrichment enabled")
	}

	return ingest.New(ingest.Sources{
		ChannelURL:    cfg.Feeds.ChannelURL,
		PlaylistURLs:  cfg.Feeds.PlaylistURLs,
		PlaylistNames: cfg.Feeds.PlaylistNames,
	}, opts...), nil
}
