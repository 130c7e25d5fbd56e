package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movies/internal/config"
	"github.com/iliyamo/movies/internal/handler"
	"github.com/iliyamo/movies/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication: the
// health check and the Prometheus scrape endpoint for gatherer.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health(db))
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterMovies mounts the movie library under /v1/movies.  Every route
// requires a valid JWT with a subject and is rate limited per user and
// route when a Redis client is available.
func RegisterMovies(e *echo.Echo, h *handler.MoviesHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1/movies",
		middleware.JWTAuth(jwtSecret),
		middleware.NewTokenBucket(rl, rdb),
	)

	// ---- Entries ----
	g.GET("/entries", h.ListEntries)
	g.POST("/entries", h.CreateEntry)
	g.PUT("/entries/:id", h.RefreshEntry)
	g.PATCH("/entries/:id", h.RefreshEntry)
	g.DELETE("/entries/:id", h.DeleteEntry)
	g.PATCH("/entries/:id/watch-status", h.ToggleWatchStatus)

	// ---- Ticket ----
	g.PATCH("/entries/:id/ticket", h.UpdateTicket)
	g.DELETE("/entries/:id/ticket", h.ClearTicket)

	// ---- Calendar, search and view ----
	g.GET("/calendar/events", h.CalendarEvents)
	g.GET("/tmdb/search", h.SearchTMDB)
	g.GET("/view", h.View)
}
