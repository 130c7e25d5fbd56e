package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movies/internal/model"
	"github.com/iliyamo/movies/internal/view"
)

// CalendarEvents handles GET /v1/movies/calendar/events?start=&end=.  Both
// bounds are required and inclusive.  Storage failures never surface here:
// the calendar degrades to an empty list.
func (h *MoviesHandler) CalendarEvents(c echo.Context) error {
	start, err := parseBound(c.QueryParam("start"))
	if err != nil {
		return badRequest(c, "start must be a date or timestamp")
	}
	end, err := parseBound(c.QueryParam("end"))
	if err != nil {
		return badRequest(c, "end must be a date or timestamp")
	}
	if end.Before(start) {
		return badRequest(c, "end must not be before start")
	}
	return c.JSON(http.StatusOK, h.Calendar.GetEvents(c.Request().Context(), start, end))
}

func parseBound(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, echo.ErrBadRequest
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

// SearchTMDB handles GET /v1/movies/tmdb/search?q=&page=.  Each hit is
// flagged with in_library so the client can disable importing it twice.
func (h *MoviesHandler) SearchTMDB(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	res, err := h.Entries.SearchProvider(c.Request().Context(), c.QueryParam("q"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// View handles GET /v1/movies/view?tab=&q=&mode=&show-ticket=.  It fetches
// the active tab, applies the search filter and resolves the ticket deep
// link in one round trip.
func (h *MoviesHandler) View(c echo.Context) error {
	st := view.State{
		Mode:   view.ParseMode(c.QueryParam("mode")),
		Search: c.QueryParam("q"),
		Tab:    view.ParseTab(c.QueryParam("tab")),
	}
	res, err := h.Entries.List(c.Request().Context(), st.Tab.Watched())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view.Build(st, res.Entries, res.Total, c.Request().URL))
}
