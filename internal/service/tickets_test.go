package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movies/internal/model"
	q "github.com/iliyamo/movies/internal/queue"
	"github.com/iliyamo/movies/internal/repository"
)

func strPtr(s string) *string { return &s }

func seedEntry(t *testing.T, repo *repository.MemoryEntryRepo) *model.MovieEntry {
	t.Helper()
	e := &model.MovieEntry{TMDBID: 550, Title: "Fight Club", Duration: 139}
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestTicketUpdateFlattensLocation(t *testing.T) {
	repo := repository.NewMemoryEntryRepo()
	events := &recordingPublisher{}
	svc := NewTicketService(repo, events, nil)
	e := seedEntry(t, repo)

	got, err := svc.Update(context.Background(), e.ID, TicketInput{
		TicketNumber:    strPtr("A-100"),
		TheatreNumber:   strPtr("5"),
		TheatreSeat:     strPtr("F12"),
		TheatreShowtime: strPtr("2024-06-01T19:30:00Z"),
		TheatreLocation: &Location{Name: "TGV Sunway", Location: GeoPoint{Latitude: 3.07, Longitude: 101.6}},
	})
	require.NoError(t, err)

	assert.Equal(t, "A-100", got.TicketNumber)
	assert.Equal(t, "5", got.TheatreNumber)
	assert.Equal(t, "F12", got.TheatreSeat)
	assert.Equal(t, "TGV Sunway", got.TheatreLocation)
	assert.Equal(t, model.Coords{Lat: 3.07, Lon: 101.6}, got.TheatreLocationCoords)
	assert.True(t, got.TheatreShowtime.Equal(time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC)))
	assert.Equal(t, []string{q.KindTicketUpdated}, events.kinds())
}

func TestTicketPartialUpdate(t *testing.T) {
	repo := repository.NewMemoryEntryRepo()
	svc := NewTicketService(repo, nil, nil)
	e := seedEntry(t, repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, e.ID, TicketInput{
		TicketNumber:    strPtr("A-100"),
		TheatreLocation: &Location{Name: "Odeon", Location: GeoPoint{Latitude: 1, Longitude: 2}},
	})
	require.NoError(t, err)

	got, err := svc.Update(ctx, e.ID, TicketInput{TheatreSeat: strPtr("B2")})
	require.NoError(t, err)
	assert.Equal(t, "A-100", got.TicketNumber)
	assert.Equal(t, "B2", got.TheatreSeat)
	assert.Equal(t, "Odeon", got.TheatreLocation)
	// Coordinates are rewritten on every update and default to 0,0.
	assert.Equal(t, model.Coords{}, got.TheatreLocationCoords)
}

func TestTicketUpdateRejectsBadShowtime(t *testing.T) {
	repo := repository.NewMemoryEntryRepo()
	svc := NewTicketService(repo, nil, nil)
	e := seedEntry(t, repo)

	_, err := svc.Update(context.Background(), e.ID, TicketInput{TheatreShowtime: strPtr("tomorrow-ish")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "theatre_showtime", ve.Field)
}

func TestTicketClear(t *testing.T) {
	repo := repository.NewMemoryEntryRepo()
	events := &recordingPublisher{}
	svc := NewTicketService(repo, events, nil)
	e := seedEntry(t, repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, e.ID, TicketInput{
		TicketNumber:    strPtr("A-100"),
		TheatreNumber:   strPtr("5"),
		TheatreSeat:     strPtr("F12"),
		TheatreShowtime: strPtr("2024-06-01 19:30:00"),
		TheatreLocation: &Location{Name: "Odeon"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, e.ID))
	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TicketNumber)
	assert.Empty(t, got.TheatreNumber)
	assert.Empty(t, got.TheatreSeat)
	assert.Empty(t, got.TheatreLocation)
	assert.False(t, got.TheatreShowtime.IsSet())
	assert.Equal(t, []string{q.KindTicketUpdated, q.KindTicketCleared}, events.kinds())
}

func TestTicketOpsOnMissingEntry(t *testing.T) {
	svc := NewTicketService(repository.NewMemoryEntryRepo(), nil, nil)
	var nf *NotFoundError

	_, err := svc.Update(context.Background(), "missing", TicketInput{TicketNumber: strPtr("x")})
	assert.ErrorAs(t, err, &nf)
	assert.ErrorAs(t, svc.Clear(context.Background(), "missing"), &nf)
}
