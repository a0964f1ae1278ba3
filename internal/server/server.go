package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"feed-gallery/internal/models"
	"feed-gallery/shared/monitoring"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	allowOrigins = "*"
	allowMethods = "GET, POST, OPTIONS"
	allowHeaders = "Content-Type, Authorization"

	invalidTypeMessage = "Invalid request type. Use 'videos', 'playlist', or 'playlists'."
	serverErrorMessage = "Server error"
)

// FeedSource is the ingestion surface the API serves from.
type FeedSource interface {
	FetchChannelVideos(ctx context.Context) []models.VideoEntry
	FetchPlaylistVideos(ctx context.Context, index int) []models.VideoEntry
	FetchAllPlaylists(ctx context.Context) []models.Playlist
}

type ServerConfig struct {

	// Where /api/youtube reads videos and playlists from
	Feeds FeedSource

	// Backs /health and /status. Optional.
	Monitor *monitoring.Monitor

	// Pre-built site to serve for all other GET requests. Optional.
	StaticDir string

	// Cache-Control max-age for static files in seconds, 0 disables it
	CacheMaxAge int
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server returns a fiber.App serving the gallery API and, when configured,
// the static site.
func Server(config *ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.WithFields(log.Fields{
			"method":     c.Method(),
			"route":      c.Route().Path,
			"status":     c.Response().StatusCode(),
			"latency":    time.Since(start),
			"request_id": c.Locals("requestid"),
		}).Info("Request")
		return err
	})

	app.Use(responseHeaders)
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: allowMethods,
		AllowHeaders: allowHeaders,
	}))

	app.Get("/api/youtube", youtubeHandler(config.Feeds))

	if config.Monitor != nil {
		monitoring.RegisterRoutes(app, config.Monitor)
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if config.StaticDir != "" {
		app.Use("/", filesystem.New(filesystem.Config{
			Root:   http.Dir(config.StaticDir),
			Browse: false,
			Index:  "index.html",
			MaxAge: config.CacheMaxAge,
		}))
	}

	return app
}

// responseHeaders sets the headers every response carries. The CORS
// middleware skips requests without an Origin and only adds the method and
// header lists to preflight responses.
func responseHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set(fiber.HeaderXXSSProtection, "1; mode=block")
	c.Set(fiber.HeaderAccessControlAllowOrigin, allowOrigins)
	c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
	return c.Next()
}

func youtubeHandler(feeds FeedSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		switch c.Query("type") {
		case "videos":
			log.Info("API: Fetching channel videos")
			return c.JSON(feeds.FetchChannelVideos(ctx))

		case "playlist":
			raw := c.Query("playlistIndex")
			if raw == "" {
				break
			}
			index, err := strconv.Atoi(raw)
			if err != nil {
				log.Warnf("Invalid playlist index: %q, using placeholders", raw)
				index = -1
			}
			log.Infof("API: Fetching playlist videos for index %d", index)
			return c.JSON(feeds.FetchPlaylistVideos(ctx, index))

		case "playlists":
			log.Info("API: Fetching all playlists")
			return c.JSON(feeds.FetchAllPlaylists(ctx))
		}

		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: invalidTypeMessage})
	}
}

// errorHandler keeps internal error text out of responses. Routing errors
// such as 404 keep their status and message.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	}

	log.WithFields(log.Fields{
		"path":  c.Path(),
		"error": err,
	}).Error("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: serverErrorMessage})
}
