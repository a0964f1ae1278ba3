package feedprobe

import (
	"context"
	"fmt"
	"time"

	"feed-gallery/internal/ingest"
	"feed-gallery/internal/models"
	"feed-gallery/shared/config"
	"feed-gallery/shared/scheduler"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// ProbeMetrics summarizes how much real feed data a probe run got back.
type ProbeMetrics struct {
	ChannelOK      bool `json:"channel_ok"`
	ChannelVideos  int  `json:"channel_videos"`
	PlaylistsOK    int  `json:"playlists_ok"`
	PlaylistsTotal int  `json:"playlists_total"`
}

// GetSummary implements the scheduler.Metrics interface
func (m ProbeMetrics) GetSummary() string {
	channel := "channel unavailable"
	if m.ChannelOK {
		channel = fmt.Sprintf("channel ok (%d videos)", m.ChannelVideos)
	}
	return fmt.Sprintf("%s, %d/%d playlists ok", channel, m.PlaylistsOK, m.PlaylistsTotal)
}

type feedSource interface {
	FetchChannelVideos(ctx context.Context) []models.VideoEntry
	FetchAllPlaylists(ctx context.Context) []models.Playlist
}

// FeedProbeAgent implements the scheduler.Agent interface. It exercises the
// same ingestion path the site uses and reports how much of it fell back to
// placeholder content.
type FeedProbeAgent struct {
	config *config.Config
	feeds  feedSource
}

func NewFeedProbeAgent(cfg *config.Config, feeds feedSource) *FeedProbeAgent {
	return &FeedProbeAgent{
		config: cfg,
		feeds:  feeds,
	}
}

func (p *FeedProbeAgent) Name() string {
	return "Feed Probe"
}

func (p *FeedProbeAgent) Initialize() error {
	log.Printf("Initializing %s...", p.Name())

	if p.feeds == nil {
		return fmt.Errorf("feed source is required")
	}
	if p.config.Feeds.ChannelURL == "" && len(p.config.Feeds.PlaylistURLs) == 0 {
		return fmt.Errorf("no feeds configured (feeds.channel_url or feeds.playlist_urls)")
	}

	log.Printf("Probing 1 channel and %d playlists", len(p.config.Feeds.PlaylistURLs))
	return nil
}

func (p *FeedProbeAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	videos := p.feeds.FetchChannelVideos(ctx)
	playlists := p.feeds.FetchAllPlaylists(ctx)

	metrics := ProbeMetrics{
		ChannelVideos:  lo.CountBy(videos, ingest.IsFeedVideo),
		PlaylistsOK:    lo.CountBy(playlists, func(pl models.Playlist) bool { return !ingest.IsPlaceholderPlaylist(pl) }),
		PlaylistsTotal: len(p.config.Feeds.PlaylistURLs),
	}
	metrics.ChannelOK = metrics.ChannelVideos > 0
	duration := time.Since(startTime)

	if !metrics.ChannelOK && metrics.PlaylistsOK == 0 {
		err := fmt.Errorf("every feed fell back to placeholders")
		if events != nil && events.OnCriticalFailure != nil {
			events.OnCriticalFailure(err, duration)
		}
		return err
	}

	if !metrics.ChannelOK || metrics.PlaylistsOK < metrics.PlaylistsTotal {
		if events != nil && events.OnPartialFailure != nil {
			events.OnPartialFailure(fmt.Errorf("degraded feeds: %s", metrics.GetSummary()), duration)
		}
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, duration)
	}

	log.Printf("Probe complete: %s", metrics.GetSummary())
	return nil
}
