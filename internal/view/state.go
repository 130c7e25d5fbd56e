// Package view holds the movie library view state and the pure functions
// that derive what the library screen shows: the search filter, tab counts
// and the ticket deep link.
package view

import (
	"net/url"
	"strings"

	"github.com/iliyamo/movies/internal/model"
)

// Mode is the layout of the entry list.
type Mode string

const (
	ModeGrid Mode = "grid"
	ModeList Mode = "list"
)

// Tab selects which entries are fetched.
type Tab string

const (
	TabUnwatched Tab = "unwatched"
	TabWatched   Tab = "watched"
)

// ShowTicketParam is the query parameter that opens an entry's ticket on load.
const ShowTicketParam = "show-ticket"

// State is the per-session view state.
type State struct {
	Mode   Mode   `json:"mode"`
	Search string `json:"search"`
	Tab    Tab    `json:"tab"`
}

// DefaultState is the state of a fresh session.
func DefaultState() State {
	return State{Mode: ModeGrid, Tab: TabUnwatched}
}

// ParseTab maps a query value to a Tab, defaulting to unwatched.
func ParseTab(s string) Tab {
	if Tab(strings.ToLower(strings.TrimSpace(s))) == TabWatched {
		return TabWatched
	}
	return TabUnwatched
}

// ParseMode maps a query value to a Mode, defaulting to grid.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeList {
		return ModeList
	}
	return ModeGrid
}

// Watched reports the is_watched value the tab lists.
func (t Tab) Watched() bool { return t == TabWatched }

// Filter keeps the entries of tab whose title contains search, ignoring
// case.  An empty search keeps every entry of the tab.  Order is preserved.
func Filter(entries []*model.MovieEntry, search string, tab Tab) []*model.MovieEntry {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]*model.MovieEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsWatched != tab.Watched() {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Title), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Counts holds the badge numbers of both tabs.
type Counts struct {
	Unwatched int `json:"unwatched"`
	Watched   int `json:"watched"`
}

// TabCounts derives both tab counts from a single list call: the active tab
// shows what was fetched and the other tab gets the remainder of total.
func TabCounts(active Tab, total, fetched int) Counts {
	other := total - fetched
	if other < 0 {
		other = 0
	}
	if active == TabWatched {
		return Counts{Watched: fetched, Unwatched: other}
	}
	return Counts{Unwatched: fetched, Watched: other}
}

// ConsumeDeepLink looks up the entry named by the show-ticket parameter of
// u.  When it is found, the entry is returned along with a copy of u without
// the parameter.  Otherwise u is returned unchanged so the link can be
// consumed once the right tab has loaded.
func ConsumeDeepLink(u *url.URL, entries []*model.MovieEntry) (*model.MovieEntry, *url.URL) {
	if u == nil {
		return nil, nil
	}
	query := u.Query()
	id := query.Get(ShowTicketParam)
	if id == "" {
		return nil, u
	}
	for _, e := range entries {
		if e.ID != id {
			continue
		}
		query.Del(ShowTicketParam)
		stripped := *u
		stripped.RawQuery = query.Encode()
		return e, &stripped
	}
	return nil, u
}
