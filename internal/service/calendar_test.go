package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movies/internal/metrics"
	"github.com/iliyamo/movies/internal/model"
	"github.com/iliyamo/movies/internal/repository"
)

func TestGetEventsProjectsEntries(t *testing.T) {
	repo := repository.NewMemoryEntryRepo()
	ctx := context.Background()

	e := &model.MovieEntry{
		TMDBID:          550,
		Title:           "Fight Club",
		Poster:          "/poster.jpg",
		Overview:        "Soap.",
		Duration:        139,
		TheatreNumber:   "5",
		TheatreSeat:     "F12",
		TheatreLocation: "Odeon",
	}
	require.NoError(t, repo.Create(ctx, e))
	show := model.NewDate(time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC))
	require.NoError(t, repo.UpdateTicket(ctx, e.ID, repository.TicketFields{
		TheatreShowtime: &show,
		Coords:          model.Coords{Lat: 51.5, Lon: -0.12},
	}))
	// Outside the window.
	require.NoError(t, repo.Create(ctx, &model.MovieEntry{TMDBID: 1, Title: "Later"}))

	svc := NewCalendarService(repo, nil)
	events := svc.GetEvents(ctx, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), show.Time)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, e.ID, ev.ID)
	assert.Equal(t, model.EventTypeSingle, ev.Type)
	assert.Equal(t, "2024-06-01T19:30:00.000Z", ev.Start)
	assert.Equal(t, "2024-06-01T21:49:00.000Z", ev.End)
	assert.Equal(t, CalendarCategory, ev.Category)
	assert.Empty(t, ev.Calendar)
	assert.Equal(t, "Odeon", ev.Location)
	require.NotNil(t, ev.LocationCoords)
	assert.Equal(t, model.Coords{Lat: 51.5, Lon: -0.12}, *ev.LocationCoords)
	assert.Contains(t, ev.Description, "![Fight Club](http://image.tmdb.org/t/p/w300/poster.jpg)")
	assert.Contains(t, ev.Description, "Soap.")
	assert.Contains(t, ev.Description, "### Theatre Number:\n5")
	assert.Contains(t, ev.Description, "### Seat Number:\nF12")
	assert.Equal(t, "/movies?show-ticket="+e.ID, ev.ReferenceLink)
}

func TestGetEventsExcludesShowtimesOutsideWindow(t *testing.T) {
	repo := repository.NewMemoryEntryRepo()
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC)

	add := func(tmdbID int, title string, at time.Time) string {
		e := &model.MovieEntry{TMDBID: tmdbID, Title: title, Duration: 90}
		require.NoError(t, repo.Create(ctx, e))
		show := model.NewDate(at)
		require.NoError(t, repo.UpdateTicket(ctx, e.ID, repository.TicketFields{TheatreShowtime: &show}))
		return e.ID
	}
	add(1, "Too Early", start.Add(-time.Second))
	onStart := add(2, "On Start", start)
	inside := add(3, "Evening", start.Add(19*time.Hour))
	onEnd := add(4, "On End", end)
	add(5, "Too Late", end.Add(time.Second))

	events := NewCalendarService(repo, nil).GetEvents(ctx, start, end)
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	assert.ElementsMatch(t, []string{onStart, inside, onEnd}, ids)
}

func TestGetEventsSoftFails(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewCalendarService(failingRepo{repository.NewMemoryEntryRepo()}, m)

	events := svc.GetEvents(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalendarSoftFails))
}
