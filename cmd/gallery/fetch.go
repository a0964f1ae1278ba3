package main

import (
	"encoding/json"
	"fmt"
	"os"

	"feed-gallery/shared/config"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch feeds once and print the normalized JSON",
		Description: `Runs the same ingestion the API uses and prints the result to stdout.
Log messages go to stderr, so the output can be piped into jq.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Usage:    "What to fetch: videos, playlist or playlists",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "index",
				Usage: "Playlist index for --type playlist",
			},
		},
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ing, err := newIngestor(ctx.Context, cfg)
			if err != nil {
				return err
			}

			var result any
			switch ctx.String("type") {
			case "videos":
				result = ing.FetchChannelVideos(ctx.Context)
			case "playlist":
				result = ing.FetchPlaylistVideos(ctx.Context, ctx.Int("index"))
			case "playlists":
				result = ing.FetchAllPlaylists(ctx.Context)
			default:
				return fmt.Errorf("invalid type %q: use videos, playlist or playlists", ctx.String("type"))
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
