// Package ingest fetches YouTube channel and playlist feeds and normalizes
// them into VideoEntry and Playlist values. No operation returns an error:
// any failure is replaced by placeholder content.
package ingest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"regexp"
	"sync"
	"time"

	"feed-gallery/internal/models"
	"feed-gallery/shared/metrics"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	sourceChannel  = "channel"
	sourcePlaylist = "playlist"

	playlistPageURL = "https://www.youtube.com/playlist?list="
)

var playlistIDPattern = regexp.MustCompile(`playlist_id=([^&]+)`)

// Sources is the fixed set of feeds an Ingestor reads from.
type Sources struct {
	ChannelURL    string
	PlaylistURLs  []string
	PlaylistNames []string
}

// Enricher fills in metadata the feeds do not carry. Only entries whose ids
// came from a feed are passed in.
type Enricher interface {
	Enrich(ctx context.Context, videos []models.VideoEntry) ([]models.VideoEntry, error)
}

type Ingestor struct {
	sources  Sources
	client   Doer
	clock    Clock
	views    func() int64
	enricher Enricher
}

type Option func(*Ingestor)

func WithHTTPClient(c Doer) Option {
	return func(i *Ingestor) { i.client = c }
}

func WithClock(c Clock) Option {
	return func(i *Ingestor) { i.clock = c }
}

// WithViewGenerator sets the view count source for placeholder videos.
func WithViewGenerator(f func() int64) Option {
	return func(i *Ingestor) { i.views = f }
}

func WithEnricher(e Enricher) Option {
	return func(i *Ingestor) { i.enricher = e }
}

func New(sources Sources, opts ...Option) *Ingestor {
	i := &Ingestor{
		sources: Sources{
			ChannelURL:    sources.ChannelURL,
			PlaylistURLs:  append([]string(nil), sources.PlaylistURLs...),
			PlaylistNames: append([]string(nil), sources.PlaylistNames...),
		},
		client: &http.Client{Timeout: 30 * time.Second},
		clock:  RealClock{},
		views:  func() int64 { return rand.Int64N(10000) },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// PlaylistCount is the number of known playlists.
func (i *Ingestor) PlaylistCount() int {
	return len(i.sources.PlaylistURLs)
}

// FetchChannelVideos returns the channel's videos, or PlaceholderVideoCount
// placeholders when the feed cannot be used.
func (i *Ingestor) FetchChannelVideos(ctx context.Context) []models.VideoEntry {
	log.Info("Fetching channel videos...")

	feed, err := i.fetchFeed(ctx, sourceChannel, i.sources.ChannelURL)
	if err != nil {
		log.Warnf("Channel feed unavailable, using placeholders: %v", err)
		return i.fallbackVideos("channel")
	}

	log.Infof("Found %d videos in channel feed", len(feed.Items))
	return i.videosFrom(ctx, feed)
}

// FetchPlaylistVideos returns the videos of the playlist at index. An index
// outside [0, PlaylistCount()) yields placeholders without a fetch.
func (i *Ingestor) FetchPlaylistVideos(ctx context.Context, index int) []models.VideoEntry {
	if index < 0 || index >= len(i.sources.PlaylistURLs) {
		log.Warnf("Invalid playlist index: %d, using placeholders", index)
		return i.fallbackVideos("playlist")
	}

	log.Infof("Fetching playlist videos for index %d...", index)
	feed, err := i.fetchFeed(ctx, sourcePlaylist, i.sources.PlaylistURLs[index])
	if err != nil {
		log.Warnf("Playlist %d unavailable, using placeholders: %v", index, err)
		return i.fallbackVideos("playlist")
	}

	log.Infof("Found %d videos in playlist %d", len(feed.Items), index)
	return i.videosFrom(ctx, feed)
}

// FetchAllPlaylists fetches every playlist concurrently. Playlists that fail
// are skipped; if all fail, PlaceholderPlaylistCount placeholders are
// returned instead.
func (i *Ingestor) FetchAllPlaylists(ctx context.Context) []models.Playlist {
	log.Info("Fetching all playlists...")

	slots := make([]*models.Playlist, len(i.sources.PlaylistURLs))
	var wg sync.WaitGroup
	for idx, url := range i.sources.PlaylistURLs {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()
			slots[idx] = i.fetchPlaylist(ctx, idx, url)
		}(idx, url)
	}
	wg.Wait()

	playlists := lo.FilterMap(slots, func(p *models.Playlist, _ int) (models.Playlist, bool) {
		if p == nil {
			return models.Playlist{}, false
		}
		return *p, true
	})

	log.Infof("Successfully fetched %d/%d playlists", len(playlists), len(slots))
	if len(playlists) == 0 {
		log.Warn("No valid playlists fetched, using placeholders")
		metrics.PlaceholderFallbacks.WithLabelValues("playlists").Inc()
		return i.PlaceholderPlaylists(PlaceholderPlaylistCount)
	}
	return playlists
}

// fetchPlaylist returns nil when the playlist feed cannot be used.
func (i *Ingestor) fetchPlaylist(ctx context.Context, index int, url string) *models.Playlist {
	feed, err := i.fetchFeed(ctx, sourcePlaylist, url)
	if err != nil {
		log.Warnf("Skipping playlist %d: %v", index, err)
		return nil
	}

	videos := i.videosFrom(ctx, feed)
	thumbnail := PlaceholderPlaylistThumb
	if len(videos) > 0 {
		thumbnail = videos[0].Thumbnail
	}

	return &models.Playlist{
		ID:           fmt.Sprintf("playlist-%d", index),
		Title:        i.playlistTitle(index, feed.Title),
		Description:  fmt.Sprintf("A collection of %d festive window projections for your home", len(videos)),
		ThumbnailURL: thumbnail,
		Videos:       videos,
		URL:          PlaylistPageURL(url),
	}
}

func (i *Ingestor) playlistTitle(index int, feedTitle string) string {
	if feedTitle != "" {
		return feedTitle
	}
	if index < len(i.sources.PlaylistNames) && i.sources.PlaylistNames[index] != "" {
		return i.sources.PlaylistNames[index]
	}
	return fmt.Sprintf("Playlist %d", index+1)
}

// PlaylistPageURL derives the public playlist page from a playlist feed URL,
// or returns "" when the URL carries no playlist_id.
func PlaylistPageURL(feedURL string) string {
	m := playlistIDPattern.FindStringSubmatch(feedURL)
	if m == nil {
		return ""
	}
	return playlistPageURL + m[1]
}

func (i *Ingestor) videosFrom(ctx context.Context, feed *gofeed.Feed) []models.VideoEntry {
	videos := make([]models.VideoEntry, len(feed.Items))
	for n, item := range feed.Items {
		videos[n] = i.TransformEntry(item)
	}
	return i.enrich(ctx, videos)
}

// enrich passes feed-sourced entries through the enricher and merges the
// result back by position. On error the input is returned unchanged.
func (i *Ingestor) enrich(ctx context.Context, videos []models.VideoEntry) []models.VideoEntry {
	if i.enricher == nil {
		return videos
	}

	var positions []int
	var candidates []models.VideoEntry
	for n, v := range videos {
		if IsFeedVideo(v) {
			positions = append(positions, n)
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return videos
	}

	enriched, err := i.enricher.Enrich(ctx, candidates)
	if err != nil || len(enriched) != len(candidates) {
		if err == nil {
			err = fmt.Errorf("enricher returned %d entries for %d inputs", len(enriched), len(candidates))
		}
		log.Warnf("Warning: Failed to enrich %d videos: %v", len(candidates), err)
		metrics.EnrichmentErrors.Inc()
		return videos
	}

	out := make([]models.VideoEntry, len(videos))
	copy(out, videos)
	for n, pos := range positions {
		out[pos] = enriched[n]
	}
	return out
}

func (i *Ingestor) fallbackVideos(operation string) []models.VideoEntry {
	metrics.PlaceholderFallbacks.WithLabelValues(operation).Inc()
	return i.PlaceholderVideos(PlaceholderVideoCount)
}
