package model

// Event is a calendar item projected from an entry with a showtime.  The
// shape is owned by the dashboard calendar, which merges events from every
// module into one view.
type Event struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Category       string  `json:"category"`
	Calendar       string  `json:"calendar"`
	Location       string  `json:"location"`
	LocationCoords *Coords `json:"location_coords,omitempty"`
	Description    string  `json:"description"`
	ReferenceLink  string  `json:"reference_link"`
}

// EventTypeSingle marks a one-off calendar event.
const EventTypeSingle = "single"
