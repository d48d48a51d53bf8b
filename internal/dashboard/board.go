// Package dashboard holds the view state behind the token table (records,
// previous snapshot, loading flag, sort, search, category filter), the pure
// derive pipeline, the transient flash overlay and the number formatting
// shared by the TUI, console and HTTP clients.
package dashboard

import (
	"tokenscope/internal/token"
)

// Board is the view-state controller for one dashboard. It is not safe for
// concurrent use; the owning event loop serializes every call.
//
// All mutation replaces whole lists: slices returned by Records, Previous or
// Derive are never modified afterwards.
type Board struct {
	records  []token.Record
	previous []token.Record
	loading  bool
	sort     token.Sort
	search   string
	filter   token.Filter
}

// NewBoard creates a board in the loading phase, seeded with records and
// sorted by market cap descending. The previous snapshot starts equal to the
// seed so the first update has something to compare against.
func NewBoard(records []token.Record) *Board {
	return &Board{
		records:  records,
		previous: records,
		loading:  true,
		sort:     token.DefaultSort,
		filter:   token.FilterAll,
	}
}

// Loading reports whether the board is still in its loading phase.
func (b *Board) Loading() bool { return b.loading }

// FinishLoading performs the one-shot loading→loaded transition. It returns
// false if the board had already loaded.
func (b *Board) FinishLoading() bool {
	if !b.loading {
		return false
	}
	b.loading = false
	return true
}

// ApplyUpdate replaces price, change and history on the record with the
// update's ID, snapshotting the current list as the previous one first.
// Unknown IDs are ignored and reported with false.
func (b *Board) ApplyUpdate(u token.Update) bool {
	next, ok := ApplyUpdate(b.records, u)
	if !ok {
		return false
	}
	b.previous = b.records
	b.records = next
	return true
}

// ApplyUpdate returns a new list with the record matching u.ID updated. The
// input slice is not modified. It returns (records, false) if no record has
// that ID.
func ApplyUpdate(records []token.Record, u token.Update) ([]token.Record, bool) {
	idx := -1
	for i := range records {
		if records[i].ID == u.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return records, false
	}
	next := make([]token.Record, len(records))
	copy(next, records)
	next[idx] = records[idx].Apply(u)
	return next, true
}

// Replace swaps in a whole new record list, e.g. a snapshot received from a
// feed server. The current list becomes the previous snapshot.
func (b *Board) Replace(records []token.Record) {
	b.previous = b.records
	b.records = records
}

// SetSort selects a sort key. Selecting the active key toggles direction;
// selecting a different key sorts by it descending.
func (b *Board) SetSort(key token.SortKey) {
	b.sort = NextSort(b.sort, key)
}

// NextSort computes the sort spec that results from selecting key.
func NextSort(cur token.Sort, key token.SortKey) token.Sort {
	if cur.Key == key {
		return token.Sort{Key: key, Direction: cur.Direction.Toggle()}
	}
	return token.Sort{Key: key, Direction: token.Descending}
}

// SetSearch sets the free-text search.
func (b *Board) SetSearch(q string) { b.search = q }

// SetFilter sets the category filter.
func (b *Board) SetFilter(f token.Filter) { b.filter = f }

// Sort returns the active sort spec.
func (b *Board) Sort() token.Sort { return b.sort }

// Search returns the active search text.
func (b *Board) Search() string { return b.search }

// Filter returns the active category filter.
func (b *Board) Filter() token.Filter { return b.filter }

// Records returns the current record list in seed order.
func (b *Board) Records() []token.Record { return b.records }

// Record returns the current record with the given ID.
func (b *Board) Record(id string) (token.Record, bool) {
	return token.Find(b.records, id)
}

// Previous returns the record with the given ID from the snapshot taken
// before the latest update.
func (b *Board) Previous(id string) (token.Record, bool) {
	return token.Find(b.previous, id)
}

// Derive returns the filtered and sorted list. It is empty while loading.
func (b *Board) Derive() []token.Record {
	if b.loading {
		return []token.Record{}
	}
	return Derive(b.records, b.search, b.filter, b.sort)
}

// Totals aggregates the current, unfiltered record list.
func (b *Board) Totals() token.Totals {
	return token.Sum(b.records)
}
