package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"feed-gallery/internal/models"
	"feed-gallery/shared/metrics"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	log "github.com/sirupsen/logrus"
)

const (
	thumbnailURLTemplate     = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
	PlaceholderVideoThumb    = "/assets/images/placeholder-video.jpg"
	PlaceholderPlaylistThumb = "/assets/images/placeholder-playlist.jpg"

	defaultTitle       = "Unknown Title"
	defaultLink        = "#"
	defaultDescription = "No description available"
	defaultDuration    = "0"

	errorTitle       = "Error Loading Video"
	errorDescription = "There was an error loading this video."
)

// Prefixes of ids that were not provided by a feed.
const (
	generatedIDPrefix   = "generated-"
	errorIDPrefix       = "error-"
	placeholderIDPrefix = "placeholder-"
)

var errNilEntry = errors.New("feed entry is nil")

// ThumbnailURL returns the hosted thumbnail for a video id, or the local
// placeholder when the id is empty.
func ThumbnailURL(videoID string) string {
	if videoID == "" {
		return PlaceholderVideoThumb
	}
	return fmt.Sprintf(thumbnailURLTemplate, videoID)
}

// TransformEntry maps a raw feed entry to a VideoEntry. It never fails: a
// malformed entry becomes an error entry.
func (i *Ingestor) TransformEntry(item *gofeed.Item) models.VideoEntry {
	video, err := i.extractVideo(item)
	if err != nil {
		log.Errorf("Error transforming video entry: %v", err)
		metrics.EntryTransformErrors.Inc()
		return i.errorEntry()
	}
	return video
}

func (i *Ingestor) extractVideo(item *gofeed.Item) (models.VideoEntry, error) {
	if item == nil {
		return models.VideoEntry{}, errNilEntry
	}
	now := i.clock.Now()

	videoID := extensionValue(item.Extensions, "yt", "videoId")
	video := models.VideoEntry{
		ID:          videoID,
		Title:       defaultTitle,
		Link:        defaultLink,
		Published:   timeOrNow(item.PublishedParsed, now),
		Updated:     timeOrNow(item.UpdatedParsed, now),
		Thumbnail:   ThumbnailURL(videoID),
		Description: defaultDescription,
		Duration:    defaultDuration,
	}
	if video.ID == "" {
		video.ID = fmt.Sprintf("%s%d", generatedIDPrefix, now.UnixMilli())
	}
	if item.Title != "" {
		video.Title = item.Title
	}
	if len(item.Links) > 0 && item.Links[0] != "" {
		video.Link = item.Links[0]
	} else if item.Link != "" {
		video.Link = item.Link
	}

	group, ok := firstExtension(item.Extensions["media"], "group")
	if !ok {
		return video, nil
	}
	if desc, ok := firstChild(group, "description"); ok && desc.Value != "" {
		video.Description = desc.Value
	}
	if community, ok := firstChild(group, "community"); ok {
		if stats, ok := firstChild(community, "statistics"); ok {
			video.Views = parseCount(stats.Attrs["views"])
		}
	}
	if content, ok := firstChild(group, "content"); ok {
		if d := content.Attrs["duration"]; isSeconds(d) {
			video.Duration = strings.TrimSpace(d)
		}
	}

	return video, nil
}

func (i *Ingestor) errorEntry() models.VideoEntry {
	now := i.clock.Now()
	return models.VideoEntry{
		ID:          fmt.Sprintf("%s%d", errorIDPrefix, now.UnixMilli()),
		Title:       errorTitle,
		Link:        defaultLink,
		Published:   now,
		Updated:     now,
		Thumbnail:   PlaceholderVideoThumb,
		Description: errorDescription,
		Views:       0,
		Duration:    defaultDuration,
	}
}

// IsFeedVideo reports whether the entry's id came from a feed rather than
// from a fallback generator.
func IsFeedVideo(v models.VideoEntry) bool {
	return !strings.HasPrefix(v.ID, generatedIDPrefix) &&
		!strings.HasPrefix(v.ID, errorIDPrefix) &&
		!strings.HasPrefix(v.ID, placeholderIDPrefix)
}

func extensionValue(exts ext.Extensions, prefix, name string) string {
	e, ok := firstExtension(exts[prefix], name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(e.Value)
}

func firstExtension(m map[string][]ext.Extension, name string) (ext.Extension, bool) {
	if m == nil || len(m[name]) == 0 {
		return ext.Extension{}, false
	}
	return m[name][0], true
}

func firstChild(e ext.Extension, name string) (ext.Extension, bool) {
	return firstExtension(e.Children, name)
}

func timeOrNow(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return *t
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func isSeconds(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && n >= 0
}
