package service

import (
	"context"
	"fmt"
	"strings"


	"github.com/iliyamo/movies/internal/logging"
	"github.com/iliyamo/movies/internal/metrics"
	"github.com/iliyamo/movies/internal/model"
	q "github.com/iliyamo/movies/internal/queue"
	"github.com/iliyamo/movies/internal/repository"
)

// GeoPoint is the coordinate half of a picked location.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a named place as sent by the location picker.
type Location struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// TicketInput is the ticket update payload.  Nil fields are left unchanged,
// except the coordinates which are always rewritten from TheatreLocation.
type TicketInput struct {
	TicketNumber    *string   `json:"ticket_number"`
	TheatreNumber   *string   `json:"theatre_number"`
	TheatreSeat     *string   `json:"theatre_seat"`
	TheatreShowtime *string   `json:"theatre_showtime"`
	TheatreLocation *Location `json:"theatre_location"`
}

// TicketService attaches and clears cinema ticket details on entries.
type TicketService struct {
	base
}

// NewTicketService wires the ticket service.  events and m may be nil.
func NewTicketService(repo repository.EntryRepository, events EventPublisher, m *metrics.Metrics) *TicketService {
	return &TicketService{base: newBase(repo, events, m)}
}

func (in TicketInput) fields() (repository.TicketFields, error) {
	f := repository.TicketFields{
		TicketNumber:  trimmed(in.TicketNumber),
		TheatreNumber: trimmed(in.TheatreNumber),
		TheatreSeat:   trimmed(in.TheatreSeat),
	}
	if in.TheatreShowtime != nil {
		d, err := model.ParseDate(*in.TheatreShowtime)
		if err != nil {
			return f, &ValidationError{Field: "theatre_showtime", Msg: err.Error()}
		}
		f.TheatreShowtime = &d
	}
	if loc := in.TheatreLocation; loc != nil {
		name := loc.Name
		f.TheatreLocation = &name
		f.Coords = model.Coords{Lat: loc.Location.Latitude, Lon: loc.Location.Longitude}
	}
	return f, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// Update writes the supplied ticket fields and returns the updated entry.
func (s *TicketService) Update(ctx context.Context, id string, in TicketInput) (e *model.MovieEntry, err error) {
	defer func() { s.metrics.ObserveOperation("tickets.update", err) }()

	if err := s.requireEntry(ctx, id); err != nil {
		return nil, err
	}
	f, err := in.fields()
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTicket(ctx, id, f); err != nil {
		return nil, fmt.Errorf("update ticket %s: %w", id, err)
	}
	e, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info().Str("entry_id", id).Str("ticket_number", e.TicketNumber).Msg("ticket updated")
	s.publish(ctx, q.KindTicketUpdated, e)
	return e, nil
}

// Clear resets the ticket number, theatre location, theatre number, seat
// and showtime.  Coordinates are left as they are.
func (s *TicketService) Clear(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.ObserveOperation("tickets.clear", err) }()

	if err := s.requireEntry(ctx, id); err != nil {
		return err
	}
	if err := s.repo.ClearTicket(ctx, id); err != nil {
		return fmt.Errorf("clear ticket %s: %w", id, err)
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, q.KindTicketCleared, e)
	return nil
}
