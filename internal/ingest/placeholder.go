package ingest

import (
	"fmt"
	"strings"
	"time"

	"feed-gallery/internal/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Fallback cardinalities.
const (
	PlaceholderVideoCount         = 10
	PlaceholderPlaylistCount      = 5
	PlaceholderPlaylistVideoCount = 3
)

const (
	placeholderTitleFormat  = "Festive Window Projection #%d"
	placeholderDescription  = "This is a placeholder video while we load the actual content. Enjoy our festive window projections!"
	placeholderDuration     = "180"
	placeholderPlaylistDesc = "A collection of beautiful window projections for your home"
)

var placeholderThemes = []string{"Christmas", "Halloween", "Easter", "Birthday", "Holiday"}

// PlaceholderVideos generates count synthetic videos, one day apart.
func (i *Ingestor) PlaceholderVideos(count int) []models.VideoEntry {
	log.Debugf("Generating %d placeholder videos", count)
	now := i.clock.Now()

	return lo.Times(count, func(n int) models.VideoEntry {
		ts := now.Add(-time.Duration(n) * 24 * time.Hour)
		return models.VideoEntry{
			ID:          fmt.Sprintf("%s%d", placeholderIDPrefix, n),
			Title:       fmt.Sprintf(placeholderTitleFormat, n+1),
			Link:        defaultLink,
			Published:   ts,
			Updated:     ts,
			Thumbnail:   PlaceholderVideoThumb,
			Description: placeholderDescription,
			Views:       i.views(),
			Duration:    placeholderDuration,
		}
	})
}

// PlaceholderPlaylists generates count synthetic playlists of three videos each.
func (i *Ingestor) PlaceholderPlaylists(count int) []models.Playlist {
	log.Debugf("Generating %d placeholder playlists", count)

	return lo.Times(count, func(n int) models.Playlist {
		return models.Playlist{
			ID:           fmt.Sprintf("%splaylist-%d", placeholderIDPrefix, n),
			Title:        placeholderThemes[n%len(placeholderThemes)] + " Collection",
			Description:  placeholderPlaylistDesc,
			ThumbnailURL: PlaceholderPlaylistThumb,
			Videos:       i.PlaceholderVideos(PlaceholderPlaylistVideoCount),
		}
	})
}

// IsPlaceholderPlaylist reports whether p was generated by PlaceholderPlaylists.
func IsPlaceholderPlaylist(p models.Playlist) bool {
	return strings.HasPrefix(p.ID, placeholderIDPrefix)
}
