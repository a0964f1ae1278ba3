package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"feed-gallery/shared/metrics"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

// Failure kinds for a feed fetch. Every error returned by fetchFeed wraps
// exactly one of them.
var (
	ErrTransport = errors.New("feed transport failed")
	ErrStatus    = errors.New("feed returned non-success status")
	ErrEmptyBody = errors.New("feed body is empty")
	ErrParse     = errors.New("feed could not be parsed")
	ErrStructure = errors.New("feed has no entries")
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// fetchFeed downloads and parses one Atom feed. The returned feed always has
// at least one entry.
func (i *Ingestor) fetchFeed(ctx context.Context, source, url string) (*gofeed.Feed, error) {
	start := time.Now()
	feed, err := i.doFetch(ctx, url)
	metrics.FeedFetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	metrics.FeedFetches.WithLabelValues(source, outcomeOf(err)).Inc()
	return feed, err
}

func (i *Ingestor) doFetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	log.Debugf("Fetching feed: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/xml, text/xml, */*")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d %s", ErrStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrTransport, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}
	log.Debugf("Fetched %s (%d bytes)", url, len(body))

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if feed.FeedType != "atom" {
		return nil, fmt.Errorf("%w: expected atom feed, got %q", ErrStructure, feed.FeedType)
	}
	if len(feed.Items) == 0 {
		return nil, ErrStructure
	}

	return feed, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrStatus):
		return metrics.OutcomeStatus
	case errors.Is(err, ErrEmptyBody):
		return metrics.OutcomeEmpty
	case errors.Is(err, ErrParse):
		return metrics.OutcomeParse
	case errors.Is(err, ErrStructure):
		return metrics.OutcomeStructure
	default:
		return metrics.OutcomeTransport
	}
}
