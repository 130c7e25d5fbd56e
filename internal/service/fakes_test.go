package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/movies/internal/credential"
	"github.com/iliyamo/movies/internal/model"
	q "github.com/iliyamo/movies/internal/queue"
	"github.com/iliyamo/movies/internal/repository"
	"github.com/iliyamo/movies/internal/tmdb"
)

type staticCreds map[string]string

func (s staticCreds) Get(_ context.Context, name string) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", credential.ErrNotFound
	}
	return v, nil
}

type fakeProvider struct {
	movies  map[int]*tmdb.Movie
	search  *tmdb.SearchResponse
	err     error
	calls   int
	lastKey string
}

func (f *fakeProvider) FetchByID(_ context.Context, apiKey string, id int) (*tmdb.Movie, error) {
	f.calls++
	f.lastKey = apiKey
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.movies[id]
	if !ok {
		return nil, errors.New("tmdb: HTTP 404 for /movie")
	}
	cp := *m
	return &cp, nil
}

func (f *fakeProvider) Search(_ context.Context, apiKey, _ string, _ int) (*tmdb.SearchResponse, error) {
	f.calls++
	f.lastKey = apiKey
	if f.err != nil {
		return nil, f.err
	}
	return f.search, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []q.EntryEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev q.EntryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

// failingRepo fails the showtime query and delegates everything else.
type failingRepo struct {
	repository.EntryRepository
}

func (failingRepo) ListByShowtime(context.Context, time.Time, time.Time) ([]*model.MovieEntry, error) {
	return nil, errors.New("connection refused")
}

func fightClub() *tmdb.Movie {
	return &tmdb.Movie{
		ID:               550,
		Title:            "Fight Club",
		OriginalTitle:    "Fight Club",
		PosterPath:       "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg",
		Genres:           []tmdb.Genre{{ID: 18, Name: "Drama"}},
		Runtime:          139,
		Overview:         "An insomniac office worker...",
		ReleaseDate:      "1999-10-15",
		OriginCountry:    []string{"US"},
		OriginalLanguage: "en",
	}
}
