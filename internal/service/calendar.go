package service

import (
	"context"
	"fmt"
	"strings"
	"time"


	"github.com/iliyamo/movies/internal/logging"
	"github.com/iliyamo/movies/internal/metrics"
	"github.com/iliyamo/movies/internal/model"
	"github.com/iliyamo/movies/internal/repository"
	"github.com/iliyamo/movies/internal/tmdb"
)

const (
	// CalendarCategory tags movie events on the shared calendar.
	CalendarCategory = "_movie"
	// EventTimeLayout is the ISO 8601 layout of event start and end.
	EventTimeLayout = "2006-01-02T15:04:05.000Z"
)

// CalendarService projects entries with a showtime into calendar events.
type CalendarService struct {
	repo    repository.EntryRepository
	metrics *metrics.Metrics
}

func NewCalendarService(repo repository.EntryRepository, m *metrics.Metrics) *CalendarService {
	return &CalendarService{repo: repo, metrics: m}
}

// GetEvents returns one event per entry whose showtime lies in [start, end].
// A failing query is logged and yields an empty list, never an error, so one
// module cannot break the merged calendar.
func (s *CalendarService) GetEvents(ctx context.Context, start, end time.Time) []model.Event {
	entries, err := s.repo.ListByShowtime(ctx, start.UTC(), end.UTC())
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Time("start", start).Time("end", end).Msg("calendar query failed; returning no events")
		s.metrics.CalendarSoftFail()
		return []model.Event{}
	}

	events := make([]model.Event, 0, len(entries))
	for _, e := range entries {
		events = append(events, ToEvent(e))
	}
	return events
}

// ToEvent maps an entry to its calendar event.  The event ends duration
// minutes after the showtime.
func ToEvent(e *model.MovieEntry) model.Event {
	showtime := e.TheatreShowtime.Time.UTC()
	coords := e.TheatreLocationCoords
	return model.Event{
		ID:             e.ID,
		Type:           model.EventTypeSingle,
		Title:          e.Title,
		Start:          showtime.Format(EventTimeLayout),
		End:            showtime.Add(time.Duration(e.Duration) * time.Minute).Format(EventTimeLayout),
		Category:       CalendarCategory,
		Calendar:       "",
		Location:       e.TheatreLocation,
		LocationCoords: &coords,
		Description:    eventDescription(e),
		ReferenceLink:  "/movies?show-ticket=" + e.ID,
	}
}

func eventDescription(e *model.MovieEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "![%s](%s/w300/%s)\n\n", e.Title, tmdb.ImageBaseURL, strings.TrimPrefix(e.Poster, "/"))
	fmt.Fprintf(&b, "### Movie Description:\n%s\n\n", e.Overview)
	fmt.Fprintf(&b, "### Theatre Number:\n%s\n\n", e.TheatreNumber)
	fmt.Fprintf(&b, "### Seat Number:\n%s\n", e.TheatreSeat)
	return b.String()
}
