package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movies/internal/service"
)

// UpdateTicket handles PATCH /v1/movies/entries/:id/ticket.  Omitted fields
// keep their stored value.
func (h *MoviesHandler) UpdateTicket(c echo.Context) error {
	var in service.TicketInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid ticket payload")
	}
	e, err := h.Tickets.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// ClearTicket handles DELETE /v1/movies/entries/:id/ticket.
func (h *MoviesHandler) ClearTicket(c echo.Context) error {
	if err := h.Tickets.Clear(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
