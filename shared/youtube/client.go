package youtube

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"feed-gallery/internal/models"
	"feed-gallery/shared/config"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Maximum ids per videos.list call.
const batchSize = 50

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// Client looks up video durations and view counts through the YouTube Data
// API. Feeds do not carry real durations, so this fills them in.
type Client struct {
	service *youtube.Service
}

// NewClient authenticates with an API key when one is configured, otherwise
// with the service-account credentials file.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	var opts []option.ClientOption

	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		httpClient, err := credentialsClient(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
	default:
		return nil, fmt.Errorf("YouTube API key or credentials file is required (set YOUTUBE_API_KEY or youtube.credentials_file)")
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return NewClientWithService(service), nil
}

func NewClientWithService(service *youtube.Service) *Client {
	return &Client{service: service}
}

func credentialsClient(ctx context.Context, path string) (*http.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s: %w", path, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file %s: %w", path, err)
	}

	log.Printf("Using service account credentials from %s", path)
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}

// Enrich returns a copy of videos with Duration and Views taken from the
// Data API. Videos the API does not know are returned unchanged.
func (c *Client) Enrich(ctx context.Context, videos []models.VideoEntry) ([]models.VideoEntry, error) {
	out := make([]models.VideoEntry, len(videos))
	copy(out, videos)

	positions := make(map[string][]int, len(videos))
	var ids []string
	for i, v := range videos {
		if _, seen := positions[v.ID]; !seen {
			ids = append(ids, v.ID)
		}
		positions[v.ID] = append(positions[v.ID], i)
	}

	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		resp, err := c.service.Videos.List([]string{"contentDetails", "statistics"}).
			Id(ids[i:end]...).
			MaxResults(batchSize).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get video details: %w", err)
		}

		for _, item := range resp.Items {
			for _, pos := range positions[item.Id] {
				applyDetails(&out[pos], item)
			}
		}
	}

	log.Debugf("Enriched %d videos from the YouTube Data API", len(ids))
	return out, nil
}

func applyDetails(v *models.VideoEntry, item *youtube.Video) {
	if item.ContentDetails != nil {
		if seconds := parseDurationSeconds(item.ContentDetails.Duration); seconds > 0 {
			v.Duration = strconv.Itoa(seconds)
		}
	}
	if item.Statistics != nil && item.Statistics.ViewCount > 0 {
		v.Views = int64(item.Statistics.ViewCount)
	}
}

// parseDurationSeconds converts an ISO 8601 duration such as "PT2H15M30S"
// or "P1DT2H".
func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	matches := isoDurationPattern.FindStringSubmatch(duration)
	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int
	for i, unit := range []int{86400, 3600, 60, 1} {
		if matches[i+1] == "" {
			continue
		}
		if n, err := strconv.Atoi(matches[i+1]); err == nil {
			totalSeconds += n * unit
		}
	}

	return totalSeconds
}
