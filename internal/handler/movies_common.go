package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movies/internal/logging"
	"github.com/iliyamo/movies/internal/service"
)

// MoviesHandler exposes the movie library over HTTP.  It holds no state of
// its own; every request runs a short sequence of service calls.
type MoviesHandler struct {
	Entries  *service.EntriesService
	Tickets  *service.TicketService
	Calendar *service.CalendarService
}

// NewMoviesHandler constructs a MoviesHandler and panics if a service is nil.
func NewMoviesHandler(entries *service.EntriesService, tickets *service.TicketService, calendar *service.CalendarService) *MoviesHandler {
	if entries == nil || tickets == nil || calendar == nil {
		panic("nil service passed to NewMoviesHandler")
	}
	return &MoviesHandler{Entries: entries, Tickets: tickets, Calendar: calendar}
}

// writeError maps service errors onto status codes:
//
//	ConfigError     500 config_error
//	ValidationError 400 invalid_input
//	NotFoundError   404 not_found
//	ConflictError   409 conflict
//	UpstreamError   502 upstream_error
//
// Anything else is logged and reported as a bare 500.
func writeError(c echo.Context, err error) error {
	var (
		cfgErr      *service.ConfigError
		validErr    *service.ValidationError
		notFoundErr *service.NotFoundError
		conflictErr *service.ConflictError
		upstreamErr *service.UpstreamError
	)
	switch {
	case errors.As(err, &cfgErr):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "config_error", "message": cfgErr.Error()})
	case errors.As(err, &validErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": validErr.Error()})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": conflictErr.Error()})
	case errors.As(err, &upstreamErr):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream_error", "message": upstreamErr.Error()})
	}
	logging.FromContext(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "internal server error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": msg})
}
