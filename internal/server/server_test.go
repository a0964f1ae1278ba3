package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"feed-gallery/internal/models"
	"feed-gallery/shared/monitoring"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeeds struct {
	playlistIndexes []int
	panicOn         string
}

func (f *fakeFeeds) FetchChannelVideos(context.Context) []models.VideoEntry {
	if f.panicOn == "videos" {
		panic("boom")
	}
	return []models.VideoEntry{{ID: "abc", Title: "Snowfall", Duration: "95"}}
}

func (f *fakeFeeds) FetchPlaylistVideos(_ context.Context, index int) []models.VideoEntry {
	f.playlistIndexes = append(f.playlistIndexes, index)
	if index < 0 {
		return []models.VideoEntry{{ID: "placeholder-0"}}
	}
	return []models.VideoEntry{{ID: "from-playlist"}}
}

func (f *fakeFeeds) FetchAllPlaylists(context.Context) []models.Playlist {
	return []models.Playlist{{ID: "playlist-0", Title: "Christmas Collection"}}
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestYouTubeRoutes(t *testing.T) {
	feeds := &fakeFeeds{}
	app := Server(&ServerConfig{Feeds: feeds})

	t.Run("Videos", func(t *testing.T) {
		resp, body := get(t, app, "/api/youtube?type=videos")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var videos []models.VideoEntry
		require.NoError(t, json.Unmarshal(body, &videos))
		require.Len(t, videos, 1)
		assert.Equal(t, "abc", videos[0].ID)
		assert.Equal(t, "95", videos[0].Duration)
	})

	t.Run("Playlist", func(t *testing.T) {
		resp, body := get(t, app, "/api/youtube?type=playlist&playlistIndex=3")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "from-playlist")
		assert.Equal(t, 3, feeds.playlistIndexes[len(feeds.playlistIndexes)-1])
	})

	t.Run("NonIntegerIndexGetsPlaceholders", func(t *testing.T) {
		resp, body := get(t, app, "/api/youtube?type=playlist&playlistIndex=abc")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "placeholder-0")
		assert.Equal(t, -1, feeds.playlistIndexes[len(feeds.playlistIndexes)-1])
	})

	t.Run("Playlists", func(t *testing.T) {
		resp, body := get(t, app, "/api/youtube?type=playlists")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var playlists []models.Playlist
		require.NoError(t, json.Unmarshal(body, &playlists))
		require.Len(t, playlists, 1)
		assert.Equal(t, "Christmas Collection", playlists[0].Title)
	})
}

func TestYouTubeBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"Missing type", "/api/youtube"},
		{"Unknown type", "/api/youtube?type=channels"},
		{"Playlist without index", "/api/youtube?type=playlist"},
	}

	app := Server(&ServerConfig{Feeds: &fakeFeeds{}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, app, tt.target)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Invalid request type. Use 'videos', 'playlist', or 'playlists'."}`, string(body))
		})
	}
}

func TestHandlerPanicReturnsGenericError(t *testing.T) {
	app := Server(&ServerConfig{Feeds: &fakeFeeds{panicOn: "videos"}})

	resp, body := get(t, app, "/api/youtube?type=videos")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Server error"}`, string(body))
}

func TestResponseHeaders(t *testing.T) {
	app := Server(&ServerConfig{Feeds: &fakeFeeds{}})

	for _, target := range []string{"/api/youtube?type=videos", "/api/youtube?type=bogus"} {
		resp, _ := get(t, app, target)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"), target)
		assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"), target)
		assert.Equal(t, "Content-Type, Authorization", resp.Header.Get("Access-Control-Allow-Headers"), target)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"), target)
		assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"), target)
		assert.Equal(t, "1; mode=block", resp.Header.Get("X-XSS-Protection"), target)
	}
}

func TestPreflight(t *testing.T) {
	app := Server(&ServerConfig{Feeds: &fakeFeeds{}})

	req := httptest.NewRequest(http.MethodOptions, "/api/youtube", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMonitoringRoutes(t *testing.T) {
	monitor := monitoring.NewMonitor()
	app := Server(&ServerConfig{Feeds: &fakeFeeds{}, Monitor: monitor})

	resp, body := get(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK - No runs yet", string(body))

	resp, body = get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>gallery</h1>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0644))

	t.Run("WithCacheControl", func(t *testing.T) {
		app := Server(&ServerConfig{Feeds: &fakeFeeds{}, StaticDir: dir, CacheMaxAge: 3600})

		resp, body := get(t, app, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<h1>gallery</h1>", string(body))
		assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

		resp, _ = get(t, app, "/assets/app.js")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("NoMaxAge", func(t *testing.T) {
		app := Server(&ServerConfig{Feeds: &fakeFeeds{}, StaticDir: dir})

		resp, _ := get(t, app, "/assets/app.js")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Cache-Control"))
	})

	t.Run("Missing", func(t *testing.T) {
		app := Server(&ServerConfig{Feeds: &fakeFeeds{}, StaticDir: dir})

		resp, _ := get(t, app, "/nope.html")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
