// Package repository contains data access logic separated from HTTP handlers.
// This file implements the MySQL store for movie entries.  Date columns are
// nullable and map to model.Date; genres and countries are JSON columns that
// map to model.StringList.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movies/internal/model"
)

const entryColumns = `id, tmdb_id, title, original_title, poster, genres, duration, overview,
	countries, language, release_date, is_watched, watch_date, ticket_number, theatre_number,
	theatre_seat, theatre_location, theatre_lat, theatre_lon, theatre_showtime, created_at, updated_at`

// EntryRepo encapsulates all database queries related to movie entries.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo constructs an EntryRepo with the provided DB handle.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*model.MovieEntry, error) {
	var (
		e        model.MovieEntry
		overview sql.NullString
	)
	err := s.Scan(
		&e.ID, &e.TMDBID, &e.Title, &e.OriginalTitle, &e.Poster, &e.Genres, &e.Duration, &overview,
		&e.Countries, &e.Language, &e.ReleaseDate, &e.IsWatched, &e.WatchDate, &e.TicketNumber,
		&e.TheatreNumber, &e.TheatreSeat, &e.TheatreLocation, &e.TheatreLocationCoords.Lat,
		&e.TheatreLocationCoords.Lon, &e.TheatreShowtime, &e.Created, &e.Updated,
	)
	if err != nil {
		return nil, err
	}
	e.Overview = overview.String
	return &e, nil
}

func (r *EntryRepo) queryEntries(ctx context.Context, q string, args ...any) ([]*model.MovieEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.MovieEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether an entry with the given id is stored.
func (r *EntryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movie_entries WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID fetches an entry by its id.  It returns ErrEntryNotFound if no row
// is found.
func (r *EntryRepo) GetByID(ctx context.Context, id string) (*model.MovieEntry, error) {
	q := `SELECT ` + entryColumns + ` FROM movie_entries WHERE id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetByTMDBID fetches the entry imported from the given TMDB id.
func (r *EntryRepo) GetByTMDBID(ctx context.Context, tmdbID int) (*model.MovieEntry, error) {
	q := `SELECT ` + entryColumns + ` FROM movie_entries WHERE tmdb_id = ? LIMIT 1`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, tmdbID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListByWatched returns every entry whose is_watched flag matches.  Ordering
// is applied by the caller.
func (r *EntryRepo) ListByWatched(ctx context.Context, watched bool) ([]*model.MovieEntry, error) {
	q := `SELECT ` + entryColumns + ` FROM movie_entries WHERE is_watched = ?`
	return r.queryEntries(ctx, q, watched)
}

// ListTMDBIDs returns the TMDB ids already present in the library.
func (r *EntryRepo) ListTMDBIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tmdb_id FROM movie_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListByShowtime returns entries whose theatre_showtime lies within
// [start, end], both ends inclusive.
func (r *EntryRepo) ListByShowtime(ctx context.Context, start, end time.Time) ([]*model.MovieEntry, error) {
	q := `SELECT ` + entryColumns + ` FROM movie_entries
	      WHERE theatre_showtime >= ? AND theatre_showtime <= ?
	      ORDER BY theatre_showtime ASC`
	return r.queryEntries(ctx, q, start.UTC(), end.UTC())
}

// Count returns the number of stored entries regardless of watch status.
func (r *EntryRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movie_entries`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts a new entry.  The id is generated when empty.  After the
// insert a SELECT repopulates e so callers receive DB defaults such as the
// timestamps.  A duplicate tmdb_id yields ErrDuplicateTMDBID.
func (r *EntryRepo) Create(ctx context.Context, e *model.MovieEntry) error {
	if e.ID == "" {
		e.ID = model.NewEntryID()
	}
	const q = `INSERT INTO movie_entries
	           (id, tmdb_id, title, original_title, poster, genres, duration, overview, countries, language, release_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.TMDBID, e.Title, e.OriginalTitle, e.Poster, e.Genres, e.Duration, e.Overview,
		e.Countries, e.Language, e.ReleaseDate,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateTMDBID
		}
		return err
	}

	created, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// UpdateMetadata overwrites the TMDB sourced columns of the entry.  Ticket
// and watch state are left untouched.
func (r *EntryRepo) UpdateMetadata(ctx context.Context, id string, e *model.MovieEntry) error {
	const q = `UPDATE movie_entries
	           SET tmdb_id = ?, title = ?, original_title = ?, poster = ?, genres = ?, duration = ?,
	               overview = ?, countries = ?, language = ?, release_date = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		e.TMDBID, e.Title, e.OriginalTitle, e.Poster, e.Genres, e.Duration,
		e.Overview, e.Countries, e.Language, e.ReleaseDate, id,
	)
	if isDuplicateKey(err) {
		return ErrDuplicateTMDBID
	}
	return err
}

// SetWatchStatus stores the watched flag together with its watch date.
func (r *EntryRepo) SetWatchStatus(ctx context.Context, id string, watched bool, watchDate model.Date) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE movie_entries SET is_watched = ?, watch_date = ? WHERE id = ?`,
		watched, watchDate, id)
	return err
}

// UpdateTicket writes the non-nil ticket fields plus the coordinates in a
// single statement.
func (r *EntryRepo) UpdateTicket(ctx context.Context, id string, f TicketFields) error {
	set := []string{}
	args := []any{}

	if f.TicketNumber != nil {
		set = append(set, "ticket_number = ?")
		args = append(args, *f.TicketNumber)
	}
	if f.TheatreNumber != nil {
		set = append(set, "theatre_number = ?")
		args = append(args, *f.TheatreNumber)
	}
	if f.TheatreSeat != nil {
		set = append(set, "theatre_seat = ?")
		args = append(args, *f.TheatreSeat)
	}
	if f.TheatreShowtime != nil {
		set = append(set, "theatre_showtime = ?")
		args = append(args, *f.TheatreShowtime)
	}
	if f.TheatreLocation != nil {
		set = append(set, "theatre_location = ?")
		args = append(args, *f.TheatreLocation)
	}
	set = append(set, "theatre_lat = ?", "theatre_lon = ?")
	args = append(args, f.Coords.Lat, f.Coords.Lon, id)

	q := `UPDATE movie_entries SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// ClearTicket resets all ticket columns in one statement so the ticket is
// never left half cleared.
func (r *EntryRepo) ClearTicket(ctx context.Context, id string) error {
	const q = `UPDATE movie_entries
	           SET ticket_number = '', theatre_location = '', theatre_number = '', theatre_seat = '',
	               theatre_showtime = NULL
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// Delete removes the entry.  It returns ErrEntryNotFound when no row was
// deleted.
func (r *EntryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movie_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
