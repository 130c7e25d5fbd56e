package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// ListEntries handles GET /v1/movies/entries?watched=true|false.  A missing
// flag lists unwatched entries; any other value is rejected.
func (h *MoviesHandler) ListEntries(c echo.Context) error {
	var watched bool
	switch c.QueryParam("watched") {
	case "", "false":
	case "true":
		watched = true
	default:
		return badRequest(c, "watched must be true or false")
	}
	res, err := h.Entries.List(c.Request().Context(), watched)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// CreateEntry handles POST /v1/movies/entries?id=<tmdb id>.
func (h *MoviesHandler) CreateEntry(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("id"))
	tmdbID, err := strconv.Atoi(raw)
	if err != nil || tmdbID <= 0 {
		return badRequest(c, "id must be a positive TMDB movie id")
	}
	e, err := h.Entries.Create(c.Request().Context(), tmdbID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// RefreshEntry handles PUT and PATCH /v1/movies/entries/:id by reloading the
// entry's metadata from TMDB.
func (h *MoviesHandler) RefreshEntry(c echo.Context) error {
	e, err := h.Entries.Update(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// DeleteEntry handles DELETE /v1/movies/entries/:id.
func (h *MoviesHandler) DeleteEntry(c echo.Context) error {
	if err := h.Entries.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleWatchStatus handles PATCH /v1/movies/entries/:id/watch-status.
func (h *MoviesHandler) ToggleWatchStatus(c echo.Context) error {
	e, err := h.Entries.ToggleWatchStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}
