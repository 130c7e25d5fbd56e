package model

import (
	"crypto/rand"
	"time"
)

// MovieEntry is a saved movie in the personal library.  Metadata fields are
// imported from TMDB and never entered by hand; ticket fields describe an
// optional cinema visit and are managed as a unit.
//
// Fields:
//  ID                    – opaque 15 char identifier, generated on insert.
//  TMDBID                – TMDB movie id, unique per entry.
//  Genres, Countries     – ordered name lists, stored as JSON.
//  Duration              – runtime in minutes.
//  WatchDate             – unset unless IsWatched is true.
//  TheatreLocationCoords – coordinates of TheatreLocation (0,0 when unknown).
type MovieEntry struct {
	ID                    string     `json:"id"`
	TMDBID                int        `json:"tmdb_id"`
	Title                 string     `json:"title"`
	OriginalTitle         string     `json:"original_title"`
	Poster                string     `json:"poster"`
	Genres                StringList `json:"genres"`
	Duration              int        `json:"duration"`
	Overview              string     `json:"overview"`
	Countries             StringList `json:"countries"`
	Language              string     `json:"language"`
	ReleaseDate           Date       `json:"release_date"`
	IsWatched             bool       `json:"is_watched"`
	WatchDate             Date       `json:"watch_date"`
	TicketNumber          string     `json:"ticket_number"`
	TheatreNumber         string     `json:"theatre_number"`
	TheatreSeat           string     `json:"theatre_seat"`
	TheatreLocation       string     `json:"theatre_location"`
	TheatreLocationCoords Coords     `json:"theatre_location_coords"`
	TheatreShowtime       Date       `json:"theatre_showtime"`
	Created               time.Time  `json:"created"`
	Updated               time.Time  `json:"updated"`
}

// HasTicket reports whether a ticket number is attached to the entry.
func (e *MovieEntry) HasTicket() bool {
	return e.TicketNumber != ""
}

// Coords is a latitude/longitude pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// IDLength is the fixed length of entry identifiers.
	IDLength = 15
)

// NewEntryID returns a random identifier matching ^[a-z0-9]{15}$.
func NewEntryID() string {
	buf := make([]byte, IDLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}
