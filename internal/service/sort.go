package service

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iliyamo/movies/internal/model"
)

// SortEntries orders entries for the library view:
//  1. unwatched before watched
//  2. entries with a ticket before those without
//  3. later showtime first, when both entries have one and they differ
//  4. title, ascending, using locale aware collation
//
// The sort is stable.
func SortEntries(entries []*model.MovieEntry) {
	// A Collator keeps internal buffers and is not safe for concurrent use,
	// so each call gets its own.
	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(entries, func(a, b *model.MovieEntry) int {
		return compareEntries(col, a, b)
	})
}

func compareEntries(col *collate.Collator, a, b *model.MovieEntry) int {
	if a.IsWatched != b.IsWatched {
		if a.IsWatched {
			return 1
		}
		return -1
	}
	if a.HasTicket() != b.HasTicket() {
		if a.HasTicket() {
			return -1
		}
		return 1
	}
	// Showtime only decides when both entries have one, as the web client
	// has always ordered them.  Mixed groups can form cycles (21:00 "Zeta" <
	// 20:00 "Alpha" < unset "Mid" < "Zeta"); their order then follows the
	// input order.
	if a.TheatreShowtime.IsSet() && b.TheatreShowtime.IsSet() && !a.TheatreShowtime.Equal(b.TheatreShowtime.Time) {
		return b.TheatreShowtime.Compare(a.TheatreShowtime.Time)
	}
	return col.CompareString(a.Title, b.Title)
}
