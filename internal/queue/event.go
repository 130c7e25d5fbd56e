// Package queue defines message payloads exchanged over the message broker.
package queue

// EntriesQueueName is the durable queue carrying entry lifecycle events.
const EntriesQueueName = "movies.entry"

// Kinds of entry events.
const (
	KindCreated       = "created"
	KindRefreshed     = "refreshed"
	KindRemoved       = "removed"
	KindWatchToggled  = "watch_toggled"
	KindTicketUpdated = "ticket_updated"
	KindTicketCleared = "ticket_cleared"
)

// EntryEvent is published after a movie entry changes.  It carries enough
// for downstream consumers to log or notify without reading the database.
type EntryEvent struct {
	Kind            string `json:"kind"`
	EntryID         string `json:"entry_id"`
	TMDBID          int    `json:"tmdb_id,omitempty"`
	Title           string `json:"title,omitempty"`
	IsWatched       bool   `json:"is_watched"`
	TheatreShowtime string `json:"theatre_showtime,omitempty"`
	OccurredAt      string `json:"occurred_at"`
}
