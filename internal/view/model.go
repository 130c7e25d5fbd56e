package view

import (
	"net/url"

	"github.com/iliyamo/movies/internal/model"
)

// Model is what the library screen renders for one state.
type Model struct {
	State   State               `json:"state"`
	Counts  Counts              `json:"counts"`
	Entries []*model.MovieEntry `json:"entries"`
	// OpenTicket is the entry whose ticket should open on load, if any.
	OpenTicket *model.MovieEntry `json:"open_ticket,omitempty"`
	// Location is the request URL after the deep link was consumed.
	Location string `json:"location"`
}

// Build composes the view model from the entries fetched for st.Tab, the
// unfiltered total and the request URL.  Counts use the fetched tab, not the
// search result, so the badges don't move while typing.
func Build(st State, fetched []*model.MovieEntry, total int, u *url.URL) Model {
	m := Model{
		State:   st,
		Counts:  TabCounts(st.Tab, total, len(fetched)),
		Entries: Filter(fetched, st.Search, st.Tab),
	}
	open, loc := ConsumeDeepLink(u, fetched)
	m.OpenTicket = open
	if loc != nil {
		m.Location = loc.RequestURI()
	}
	return m
}
