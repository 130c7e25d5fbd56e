package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"


	"github.com/iliyamo/movies/internal/credential"
	"github.com/iliyamo/movies/internal/logging"
	"github.com/iliyamo/movies/internal/metrics"
	"github.com/iliyamo/movies/internal/model"
	q "github.com/iliyamo/movies/internal/queue"
	"github.com/iliyamo/movies/internal/repository"
	"github.com/iliyamo/movies/internal/tmdb"
)

// TMDBKeyName is the credential name of the TMDB access token.
const TMDBKeyName = "tmdb"

// MetadataProvider fetches movie metadata from TMDB.
type MetadataProvider interface {
	FetchByID(ctx context.Context, apiKey string, id int) (*tmdb.Movie, error)
	Search(ctx context.Context, apiKey, query string, page int) (*tmdb.SearchResponse, error)
}

// ListResult is the list response.  Total counts every entry regardless of
// the watched filter so the client can derive the other tab's count.
type ListResult struct {
	Total   int                 `json:"total"`
	Entries []*model.MovieEntry `json:"entries"`
}

// SearchHit is a TMDB search result annotated with library membership.
type SearchHit struct {
	tmdb.SearchResult
	InLibrary bool `json:"in_library"`
}

// SearchResult is a page of TMDB search hits.
type SearchResult struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []SearchHit `json:"results"`
}

// base carries what the entry and ticket services share.
type base struct {
	repo    repository.EntryRepository
	events  EventPublisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func newBase(repo repository.EntryRepository, events EventPublisher, m *metrics.Metrics) base {
	if events == nil {
		events = NopPublisher{}
	}
	return base{
		repo:    repo,
		events:  events,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// requireEntry is the existence pre-check run before every mutation.
func (b *base) requireEntry(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Msg: "is required"}
	}
	ok, err := b.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check entry %s: %w", id, err)
	}
	if !ok {
		return &NotFoundError{ID: id}
	}
	return nil
}

// load reads an entry, translating the repository sentinel.
func (b *base) load(ctx context.Context, id string) (*model.MovieEntry, error) {
	e, err := b.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load entry %s: %w", id, err)
	}
	return e, nil
}

// publish sends a lifecycle event.  Failures are logged and never returned.
func (b *base) publish(ctx context.Context, kind string, e *model.MovieEntry) {
	ev := q.EntryEvent{
		Kind:       kind,
		EntryID:    e.ID,
		TMDBID:     e.TMDBID,
		Title:      e.Title,
		IsWatched:  e.IsWatched,
		OccurredAt: b.now().Format(time.RFC3339),
	}
	if e.TheatreShowtime.IsSet() {
		ev.TheatreShowtime = e.TheatreShowtime.String()
	}
	err := b.events.Publish(ctx, ev)
	b.metrics.ObserveEvent(kind, err)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("kind", kind).Str("entry_id", e.ID).Msg("publish entry event failed")
	}
}

// EntriesService implements listing, importing, refreshing, deleting and
// watch toggling of library entries.
type EntriesService struct {
	base
	creds    credential.Store
	provider MetadataProvider
}

// NewEntriesService wires the entries service.  events and m may be nil.
func NewEntriesService(repo repository.EntryRepository, creds credential.Store, provider MetadataProvider, events EventPublisher, m *metrics.Metrics) *EntriesService {
	return &EntriesService{
		base:     newBase(repo, events, m),
		creds:    creds,
		provider: provider,
	}
}

// SetClock overrides the time source.
func (s *EntriesService) SetClock(now func() time.Time) { s.now = now }

// List returns the entries matching watched, sorted for display, together
// with the unfiltered total.
func (s *EntriesService) List(ctx context.Context, watched bool) (*ListResult, error) {
	entries, err := s.repo.ListByWatched(ctx, watched)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	SortEntries(entries)
	return &ListResult{Total: total, Entries: entries}, nil
}

// apiKey resolves the TMDB credential.
func (s *EntriesService) apiKey(ctx context.Context) (string, error) {
	key, err := s.creds.Get(ctx, TMDBKeyName)
	if errors.Is(err, credential.ErrNotFound) || (err == nil && key == "") {
		return "", &ConfigError{Msg: "API key not found"}
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s api key: %w", TMDBKeyName, err)
	}
	return key, nil
}

func (s *EntriesService) fetch(ctx context.Context, apiKey string, tmdbID int) (*tmdb.Movie, error) {
	m, err := s.provider.FetchByID(ctx, apiKey, tmdbID)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	return m, nil
}

// applyMovie copies the provider fields onto e.
func applyMovie(ctx context.Context, e *model.MovieEntry, m *tmdb.Movie) {
	e.TMDBID = m.ID
	e.Title = m.Title
	e.OriginalTitle = m.OriginalTitle
	e.Poster = m.PosterPath
	e.Genres = model.StringList(m.GenreNames())
	e.Duration = m.Runtime
	e.Overview = m.Overview
	e.Countries = append(model.StringList{}, m.OriginCountry...)
	e.Language = m.OriginalLanguage

	rd, err := model.ParseDate(m.ReleaseDate)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Int("tmdb_id", m.ID).Msg("ignoring unparsable release date")
	}
	e.ReleaseDate = rd
}

// Create imports a TMDB movie into the library.
func (s *EntriesService) Create(ctx context.Context, tmdbID int) (e *model.MovieEntry, err error) {
	defer func() { s.metrics.ObserveOperation("entries.create", err) }()

	if tmdbID <= 0 {
		return nil, &ValidationError{Field: "id", Msg: "must be a positive TMDB id"}
	}
	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	// Best-effort pre-check; the unique index on tmdb_id catches the race.
	_, err = s.repo.GetByTMDBID(ctx, tmdbID)
	switch {
	case err == nil:
		return nil, &ConflictError{Msg: "Entry already exists"}
	case !errors.Is(err, repository.ErrEntryNotFound):
		return nil, fmt.Errorf("check tmdb id %d: %w", tmdbID, err)
	}

	m, err := s.fetch(ctx, key, tmdbID)
	if err != nil {
		return nil, err
	}

	e = &model.MovieEntry{}
	applyMovie(ctx, e, m)
	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateTMDBID) {
			return nil, &ConflictError{Msg: "Entry already exists"}
		}
		return nil, fmt.Errorf("create entry: %w", err)
	}

	logging.FromContext(ctx).Info().Str("entry_id", e.ID).Int("tmdb_id", e.TMDBID).Str("title", e.Title).Msg("movie entry created")
	s.publish(ctx, q.KindCreated, e)
	return e, nil
}

// Update refreshes an entry with the latest TMDB data.
func (s *EntriesService) Update(ctx context.Context, id string) (e *model.MovieEntry, err error) {
	defer func() { s.metrics.ObserveOperation("entries.update", err) }()

	if err := s.requireEntry(ctx, id); err != nil {
		return nil, err
	}
	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := s.fetch(ctx, key, current.TMDBID)
	if err != nil {
		return nil, err
	}

	applyMovie(ctx, current, m)
	if err := s.repo.UpdateMetadata(ctx, id, current); err != nil {
		if errors.Is(err, repository.ErrDuplicateTMDBID) {
			return nil, &ConflictError{Msg: "Entry already exists"}
		}
		return nil, fmt.Errorf("update entry %s: %w", id, err)
	}
	e, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, q.KindRefreshed, e)
	return e, nil
}

// Remove deletes an entry.
func (s *EntriesService) Remove(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.ObserveOperation("entries.remove", err) }()

	if err := s.requireEntry(ctx, id); err != nil {
		return err
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return &NotFoundError{ID: id}
		}
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	s.publish(ctx, q.KindRemoved, e)
	return nil
}

// ToggleWatchStatus flips is_watched.  Turning it on stamps watch_date with
// the showtime, or with the current time when no showtime is set; turning
// it off clears watch_date.
func (s *EntriesService) ToggleWatchStatus(ctx context.Context, id string) (e *model.MovieEntry, err error) {
	defer func() { s.metrics.ObserveOperation("entries.toggle_watch", err) }()

	if err := s.requireEntry(ctx, id); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	watched := !current.IsWatched
	var watchDate model.Date
	if watched {
		watchDate = current.TheatreShowtime
		if !watchDate.IsSet() {
			watchDate = model.NewDate(s.now())
		}
	}
	if err := s.repo.SetWatchStatus(ctx, id, watched, watchDate); err != nil {
		return nil, fmt.Errorf("toggle watch status %s: %w", id, err)
	}
	e, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, q.KindWatchToggled, e)
	return e, nil
}

// SearchProvider searches TMDB by title and marks hits already imported.
func (s *EntriesService) SearchProvider(ctx context.Context, query string, page int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "q", Msg: "is required"}
	}
	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res, err := s.provider.Search(ctx, key, query, page)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	logging.FromContext(ctx).Debug().Str("query", query).Int("results", len(res.Results)).Dur("took", time.Since(started)).Msg("tmdb search")

	ids, err := s.repo.ListTMDBIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tmdb ids: %w", err)
	}
	have := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		have[id] = struct{}{}
	}

	out := &SearchResult{
		Page:         res.Page,
		TotalPages:   res.TotalPages,
		TotalResults: res.TotalResults,
		Results:      make([]SearchHit, 0, len(res.Results)),
	}
	for _, r := range res.Results {
		_, in := have[r.ID]
		out.Results = append(out.Results, SearchHit{SearchResult: r, InLibrary: in})
	}
	return out, nil
}
