package ingest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var testNow = time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

const feedOpen = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <link rel="self" href="http://www.youtube.com/feeds/videos.xml?playlist_id=PLtest"/>
 <id>yt:playlist:PLtest</id>
`

// entryXML renders a YouTube-style Atom entry with every field present.
func entryXML(id string) string {
	return fmt.Sprintf(`
 <entry>
  <id>yt:video:%[1]s</id>
  <yt:videoId>%[1]s</yt:videoId>
  <yt:channelId>UC50vfiAGflBnDv6PD1NNTrw</yt:channelId>
  <title>Video %[1]s</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=%[1]s"/>
  <author><name>Festive Projections</name></author>
  <published>2024-11-30T10:00:00+00:00</published>
  <updated>2024-12-01T08:30:00+00:00</updated>
  <media:group>
   <media:title>Video %[1]s</media:title>
   <media:content url="https://www.youtube.com/v/%[1]s?version=3" type="application/x-shockwave-flash" width="640" height="390" duration="95"/>
   <media:thumbnail url="https://i1.ytimg.com/vi/%[1]s/hqdefault.jpg" width="480" height="360"/>
   <media:description>Description of %[1]s</media:description>
   <media:community>
    <media:starRating count="12" average="5.00" min="1" max="5"/>
    <media:statistics views="1234"/>
   </media:community>
  </media:group>
 </entry>`, id)
}

func feedXML(title string, entries ...string) string {
	var b strings.Builder
	b.WriteString(feedOpen)
	if title != "" {
		fmt.Fprintf(&b, " <title>%s</title>\n", title)
	}
	for _, e := range entries {
		b.WriteString(e)
	}
	b.WriteString("\n</feed>\n")
	return b.String()
}

// feedServer serves fixed bodies by path; unknown paths get a 500.
type feedServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newFeedServer(t *testing.T, bodies map[string]string) *feedServer {
	t.Helper()
	fs := &feedServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml; charset=UTF-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(fs.Close)
	return fs
}

// countingDoer records calls and always fails.
type countingDoer struct {
	calls atomic.Int64
}

func (d *countingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return nil, fmt.Errorf("network disabled")
}

func newTestIngestor(sources Sources, opts ...Option) *Ingestor {
	base := []Option{
		WithClock(NewFakeClock(testNow)),
		WithViewGenerator(func() int64 { return 42 }),
	}
	return New(sources, append(base, opts...)...)
}
