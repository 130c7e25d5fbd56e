package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movies/internal/config"
	"github.com/iliyamo/movies/internal/credential"
	"github.com/iliyamo/movies/internal/handler"
	"github.com/iliyamo/movies/internal/model"
	"github.com/iliyamo/movies/internal/repository"
	"github.com/iliyamo/movies/internal/router"
	"github.com/iliyamo/movies/internal/service"
	"github.com/iliyamo/movies/internal/tmdb"
	"github.com/iliyamo/movies/internal/utils"
)

const jwtSecret = "handler-test-secret"

type stubProvider struct{ fail bool }

func (p stubProvider) FetchByID(_ context.Context, _ string, id int) (*tmdb.Movie, error) {
	if p.fail {
		return nil, errors.New("tmdb: HTTP 503 for /movie")
	}
	return &tmdb.Movie{
		ID:            id,
		Title:         fmt.Sprintf("Movie %d", id),
		Genres:        []tmdb.Genre{{ID: 18, Name: "Drama"}},
		Runtime:       100,
		ReleaseDate:   "2001-01-01",
		OriginCountry: []string{"US"},
	}, nil
}

func (p stubProvider) Search(context.Context, string, string, int) (*tmdb.SearchResponse, error) {
	return &tmdb.SearchResponse{Page: 1, TotalPages: 1, TotalResults: 1,
		Results: []tmdb.SearchResult{{ID: 550, Title: "Fight Club"}}}, nil
}

type envCreds map[string]string

func (c envCreds) Get(_ context.Context, name string) (string, error) {
	if v, ok := c[name]; ok {
		return v, nil
	}
	return "", credential.ErrNotFound
}

type server struct {
	e    *echo.Echo
	repo *repository.MemoryEntryRepo
	tok  string
}

func newServer(t *testing.T, creds credential.Store, provider service.MetadataProvider) *server {
	t.Helper()
	repo := repository.NewMemoryEntryRepo()
	h := handler.NewMoviesHandler(
		service.NewEntriesService(repo, creds, provider, nil, nil),
		service.NewTicketService(repo, nil, nil),
		service.NewCalendarService(repo, nil),
	)
	e := echo.New()
	router.RegisterRoutes(e, nil, prometheus.NewRegistry())
	router.RegisterMovies(e, h, jwtSecret, config.RateLimitConfig{}, nil)

	tok, err := utils.NewAccessToken(jwtSecret, "user-1", time.Hour)
	require.NoError(t, err)
	return &server{e: e, repo: repo, tok: tok.Token}
}

func (s *server) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+s.tok)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestEntryLifecycle(t *testing.T) {
	s := newServer(t, envCreds{service.TMDBKeyName: "k"}, stubProvider{})

	rec := s.do(t, http.MethodPost, "/v1/movies/entries?id=550", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.MovieEntry](t, rec)
	assert.Equal(t, 550, created.TMDBID)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "", raw["watch_date"])
	assert.Equal(t, "", raw["theatre_showtime"])

	rec = s.do(t, http.MethodPost, "/v1/movies/entries?id=550", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, "/v1/movies/entries/"+created.ID+"/watch-status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.MovieEntry](t, rec).IsWatched)

	rec = s.do(t, http.MethodGet, "/v1/movies/entries?watched=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[service.ListResult](t, rec)
	assert.Equal(t, 1, list.Total)
	assert.Empty(t, list.Entries)

	rec = s.do(t, http.MethodPut, "/v1/movies/entries/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/movies/entries/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/movies/entries/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[map[string]string](t, rec)["error"])
}

func TestListEntriesWatchedFlag(t *testing.T) {
	s := newServer(t, envCreds{service.TMDBKeyName: "k"}, stubProvider{})
	created := decode[model.MovieEntry](t, s.do(t, http.MethodPost, "/v1/movies/entries?id=550", ""))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/v1/movies/entries/"+created.ID+"/watch-status", "").Code)

	for query, want := range map[string]int{"": 0, "?watched=false": 0, "?watched=true": 1} {
		rec := s.do(t, http.MethodGet, "/v1/movies/entries"+query, "")
		require.Equal(t, http.StatusOK, rec.Code, query)
		assert.Len(t, decode[service.ListResult](t, rec).Entries, want, query)
	}

	for _, bad := range []string{"yes", "1", "TRUE", "t", "garbage"} {
		rec := s.do(t, http.MethodGet, "/v1/movies/entries?watched="+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
		assert.Equal(t, "invalid_input", decode[map[string]string](t, rec)["error"], bad)
	}
}

func TestCreateErrors(t *testing.T) {
	s := newServer(t, envCreds{}, stubProvider{})
	rec := s.do(t, http.MethodPost, "/v1/movies/entries?id=550", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]string{"error": "config_error", "message": "API key not found"}, decode[map[string]string](t, rec))

	rec = s.do(t, http.MethodPost, "/v1/movies/entries?id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s = newServer(t, envCreds{service.TMDBKeyName: "k"}, stubProvider{fail: true})
	rec = s.do(t, http.MethodPost, "/v1/movies/entries?id=550", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["message"], "Failed to fetch data from TMDB")
}

func TestTicketAndCalendar(t *testing.T) {
	s := newServer(t, envCreds{service.TMDBKeyName: "k"}, stubProvider{})
	created := decode[model.MovieEntry](t, s.do(t, http.MethodPost, "/v1/movies/entries?id=7", ""))

	rec := s.do(t, http.MethodPatch, "/v1/movies/entries/"+created.ID+"/ticket", `{
		"ticket_number": "A-1",
		"theatre_seat": "F12",
		"theatre_showtime": "2024-06-01T19:30:00Z",
		"theatre_location": {"name": "Odeon", "location": {"latitude": 51.5, "longitude": -0.12}}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.MovieEntry](t, rec)
	assert.Equal(t, "A-1", updated.TicketNumber)
	assert.Equal(t, model.Coords{Lat: 51.5, Lon: -0.12}, updated.TheatreLocationCoords)
	assert.Equal(t, "2024-06-01 19:30:00.000Z", updated.TheatreShowtime.String())

	rec = s.do(t, http.MethodGet, "/v1/movies/calendar/events?start=2024-06-01&end=2024-06-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]model.Event](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "/movies?show-ticket="+created.ID, events[0].ReferenceLink)
	assert.Equal(t, "2024-06-01T21:10:00.000Z", events[0].End)

	rec = s.do(t, http.MethodGet, "/v1/movies/calendar/events?start=2024-06-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/movies/entries/"+created.ID+"/ticket", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPatch, "/v1/movies/entries/missing000000000/ticket", `{"ticket_number":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/v1/movies/entries/"+created.ID+"/ticket", `{"theatre_showtime":"whenever"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchAndView(t *testing.T) {
	s := newServer(t, envCreds{service.TMDBKeyName: "k"}, stubProvider{})
	created := decode[model.MovieEntry](t, s.do(t, http.MethodPost, "/v1/movies/entries?id=550", ""))

	rec := s.do(t, http.MethodGet, "/v1/movies/tmdb/search?q=fight", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[service.SearchResult](t, rec)
	require.Len(t, res.Results, 1)
	assert.True(t, res.Results[0].InLibrary)

	rec = s.do(t, http.MethodGet, "/v1/movies/view?tab=unwatched&mode=list&show-ticket="+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var vm struct {
		State struct {
			Mode string `json:"mode"`
			Tab  string `json:"tab"`
		} `json:"state"`
		Counts struct {
			Unwatched int `json:"unwatched"`
			Watched   int `json:"watched"`
		} `json:"counts"`
		OpenTicket *model.MovieEntry `json:"open_ticket"`
		Location   string            `json:"location"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	assert.Equal(t, "list", vm.State.Mode)
	assert.Equal(t, 1, vm.Counts.Unwatched)
	assert.Equal(t, 0, vm.Counts.Watched)
	require.NotNil(t, vm.OpenTicket)
	assert.Equal(t, created.ID, vm.OpenTicket.ID)
	assert.Equal(t, "/v1/movies/view?mode=list&tab=unwatched", vm.Location)
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newServer(t, envCreds{}, stubProvider{})
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/movies/entries", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
