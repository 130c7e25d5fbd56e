package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/movies/internal/model"
)

// MemoryEntryRepo stores entries in-memory.  It is used when the server runs
// with STORE_DRIVER=memory and by tests; it mirrors the MySQL repository
// including the unique tmdb_id constraint.
type MemoryEntryRepo struct {
	mu      sync.RWMutex
	entries map[string]*model.MovieEntry
	now     func() time.Time
}

// NewMemoryEntryRepo returns an empty repository.
func NewMemoryEntryRepo() *MemoryEntryRepo {
	return &MemoryEntryRepo{
		entries: make(map[string]*model.MovieEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func cloneEntry(e *model.MovieEntry) *model.MovieEntry {
	c := *e
	c.Genres = append(model.StringList{}, e.Genres...)
	c.Countries = append(model.StringList{}, e.Countries...)
	return &c
}

func (r *MemoryEntryRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok, nil
}

func (r *MemoryEntryRepo) GetByID(_ context.Context, id string) (*model.MovieEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return cloneEntry(e), nil
}

func (r *MemoryEntryRepo) GetByTMDBID(_ context.Context, tmdbID int) (*model.MovieEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.TMDBID == tmdbID {
			return cloneEntry(e), nil
		}
	}
	return nil, ErrEntryNotFound
}

func (r *MemoryEntryRepo) ListByWatched(_ context.Context, watched bool) ([]*model.MovieEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.MovieEntry{}
	for _, e := range r.entries {
		if e.IsWatched == watched {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (r *MemoryEntryRepo) ListTMDBIDs(_ context.Context) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.TMDBID)
	}
	return out, nil
}

func (r *MemoryEntryRepo) ListByShowtime(_ context.Context, start, end time.Time) ([]*model.MovieEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.MovieEntry{}
	for _, e := range r.entries {
		st := e.TheatreShowtime
		if !st.IsSet() || st.Before(start) || st.After(end) {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	slices.SortFunc(out, func(a, b *model.MovieEntry) int {
		return a.TheatreShowtime.Compare(b.TheatreShowtime.Time)
	})
	return out, nil
}

func (r *MemoryEntryRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), nil
}

func (r *MemoryEntryRepo) Create(_ context.Context, e *model.MovieEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.TMDBID == e.TMDBID {
			return ErrDuplicateTMDBID
		}
	}
	if e.ID == "" {
		e.ID = model.NewEntryID()
	}
	now := r.now()
	e.Created, e.Updated = now, now
	if e.Genres == nil {
		e.Genres = model.StringList{}
	}
	if e.Countries == nil {
		e.Countries = model.StringList{}
	}
	r.entries[e.ID] = cloneEntry(e)
	return nil
}

// mutate applies fn to the stored entry under the write lock.
func (r *MemoryEntryRepo) mutate(id string, fn func(e *model.MovieEntry) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if err := fn(e); err != nil {
		return err
	}
	e.Updated = r.now()
	return nil
}

func (r *MemoryEntryRepo) UpdateMetadata(_ context.Context, id string, m *model.MovieEntry) error {
	r.mu.RLock()
	for otherID, other := range r.entries {
		if otherID != id && other.TMDBID == m.TMDBID {
			r.mu.RUnlock()
			return ErrDuplicateTMDBID
		}
	}
	r.mu.RUnlock()

	return r.mutate(id, func(e *model.MovieEntry) error {
		e.TMDBID = m.TMDBID
		e.Title = m.Title
		e.OriginalTitle = m.OriginalTitle
		e.Poster = m.Poster
		e.Genres = append(model.StringList{}, m.Genres...)
		e.Duration = m.Duration
		e.Overview = m.Overview
		e.Countries = append(model.StringList{}, m.Countries...)
		e.Language = m.Language
		e.ReleaseDate = m.ReleaseDate
		return nil
	})
}

func (r *MemoryEntryRepo) SetWatchStatus(_ context.Context, id string, watched bool, watchDate model.Date) error {
	return r.mutate(id, func(e *model.MovieEntry) error {
		e.IsWatched = watched
		e.WatchDate = watchDate
		return nil
	})
}

func (r *MemoryEntryRepo) UpdateTicket(_ context.Context, id string, f TicketFields) error {
	return r.mutate(id, func(e *model.MovieEntry) error {
		if f.TicketNumber != nil {
			e.TicketNumber = *f.TicketNumber
		}
		if f.TheatreNumber != nil {
			e.TheatreNumber = *f.TheatreNumber
		}
		if f.TheatreSeat != nil {
			e.TheatreSeat = *f.TheatreSeat
		}
		if f.TheatreShowtime != nil {
			e.TheatreShowtime = *f.TheatreShowtime
		}
		if f.TheatreLocation != nil {
			e.TheatreLocation = *f.TheatreLocation
		}
		e.TheatreLocationCoords = f.Coords
		return nil
	})
}

func (r *MemoryEntryRepo) ClearTicket(_ context.Context, id string) error {
	return r.mutate(id, func(e *model.MovieEntry) error {
		e.TicketNumber = ""
		e.TheatreLocation = ""
		e.TheatreNumber = ""
		e.TheatreSeat = ""
		e.TheatreShowtime = model.Date{}
		return nil
	})
}

func (r *MemoryEntryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

// MemoryAPIKeyRepo is the in-memory counterpart of APIKeyRepo.
type MemoryAPIKeyRepo struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

func NewMemoryAPIKeyRepo() *MemoryAPIKeyRepo {
	return &MemoryAPIKeyRepo{keys: make(map[string][]byte)}
}

func (r *MemoryAPIKeyRepo) Get(_ context.Context, name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.keys[name]
	if !ok {
		return nil, ErrAPIKeyNotFound
	}
	return append([]byte(nil), ct...), nil
}

func (r *MemoryAPIKeyRepo) Put(_ context.Context, name string, ciphertext []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[name] = append([]byte(nil), ciphertext...)
	return nil
}

func (r *MemoryAPIKeyRepo) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[name]; !ok {
		return ErrAPIKeyNotFound
	}
	delete(r.keys, name)
	return nil
}
