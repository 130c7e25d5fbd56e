package repository

import (
	"context"
	"time"

	"github.com/iliyamo/movies/internal/model"
)

// EntryRepository defines persistence operations for movie entries.  The
// MySQL implementation is EntryRepo; MemoryEntryRepo backs local runs and
// tests.
type EntryRepository interface {
	// Exists performs the existence pre-check used before every mutation.
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.MovieEntry, error)
	GetByTMDBID(ctx context.Context, tmdbID int) (*model.MovieEntry, error)
	ListByWatched(ctx context.Context, watched bool) ([]*model.MovieEntry, error)
	ListTMDBIDs(ctx context.Context) ([]int, error)
	// ListByShowtime returns entries whose showtime lies in [start, end].
	ListByShowtime(ctx context.Context, start, end time.Time) ([]*model.MovieEntry, error)
	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, e *model.MovieEntry) error
	// UpdateMetadata overwrites the provider sourced fields of an entry.
	UpdateMetadata(ctx context.Context, id string, e *model.MovieEntry) error
	SetWatchStatus(ctx context.Context, id string, watched bool, watchDate model.Date) error
	UpdateTicket(ctx context.Context, id string, f TicketFields) error
	ClearTicket(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// TicketFields is a partial ticket update.  Nil pointers leave the column
// unchanged; Coords is always written.
type TicketFields struct {
	TicketNumber    *string
	TheatreNumber   *string
	TheatreSeat     *string
	TheatreShowtime *model.Date
	TheatreLocation *string
	Coords          model.Coords
}

// APIKeyRepository stores encrypted provider credentials by name.
type APIKeyRepository interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, ciphertext []byte) error
	Delete(ctx context.Context, name string) error
}
