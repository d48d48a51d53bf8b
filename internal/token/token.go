// Package token defines the tracked token record, its closed enumerations
// (category, sort key, sort direction) and the static seed set every
// dashboard starts from.
package token

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// Category is the lifecycle stage a token is labelled with. It never changes
// after the record is created.
type Category int

const (
	CategoryNew Category = iota
	CategoryLateStage
	CategoryGraduated
)

// Categories lists every category in display order.
var Categories = []Category{CategoryNew, CategoryLateStage, CategoryGraduated}

// Slug returns the stable machine name used in URLs and config.
func (c Category) Slug() string {
	switch c {
	case CategoryNew:
		return "new"
	case CategoryLateStage:
		return "late-stage"
	case CategoryGraduated:
		return "graduated"
	default:
		return "unknown"
	}
}

// String returns the display label.
func (c Category) String() string {
	switch c {
	case CategoryNew:
		return "New pairs"
	case CategoryLateStage:
		return "Final Stretch"
	case CategoryGraduated:
		return "Migrated"
	default:
		return "?"
	}
}

// ParseCategory accepts either the slug or the display label, ignoring case.
func ParseCategory(s string) (Category, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if want == c.Slug() || want == strings.ToLower(c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Filter selects either every category or exactly one.
type Filter struct {
	all      bool
	category Category
}

// FilterAll matches every record.
var FilterAll = Filter{all: true}

// FilterCategory matches only records of the given category.
func FilterCategory(c Category) Filter {
	return Filter{category: c}
}

// Filters lists every filter choice in button order: All, then each category.
func Filters() []Filter {
	fs := []Filter{FilterAll}
	for _, c := range Categories {
		fs = append(fs, FilterCategory(c))
	}
	return fs
}

// IsAll reports whether the filter matches every category.
func (f Filter) IsAll() bool { return f.all }

// Category returns the selected category; meaningless when IsAll is true.
func (f Filter) Category() Category { return f.category }

// Match reports whether a record of category c passes the filter.
func (f Filter) Match(c Category) bool {
	return f.all || f.category == c
}

func (f Filter) String() string {
	if f.all {
		return "All"
	}
	return f.category.String()
}

// ParseFilter parses "all" (or "") and any category accepted by ParseCategory.
func ParseFilter(s string) (Filter, error) {
	if t := strings.ToLower(strings.TrimSpace(s)); t == "" || t == "all" {
		return FilterAll, nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return Filter{}, err
	}
	return FilterCategory(c), nil
}

// SortKey names a sortable numeric column.
type SortKey int

const (
	SortMarketCap SortKey = iota
	SortPrice
	SortVolume
	SortChange
)

// SortKeys lists the sortable columns in header order.
var SortKeys = []SortKey{SortMarketCap, SortVolume, SortChange, SortPrice}

// Param returns the query-string name of the key.
func (k SortKey) Param() string {
	switch k {
	case SortMarketCap:
		return "marketCap"
	case SortPrice:
		return "price"
	case SortVolume:
		return "volume24h"
	case SortChange:
		return "change24h"
	default:
		return "?"
	}
}

// String returns the column header label.
func (k SortKey) String() string {
	switch k {
	case SortMarketCap:
		return "Market Cap"
	case SortPrice:
		return "Price"
	case SortVolume:
		return "Volume (24h)"
	case SortChange:
		return "Change (24h)"
	default:
		return "?"
	}
}

// Value extracts the sort field from a record.
func (k SortKey) Value(r Record) float64 {
	switch k {
	case SortPrice:
		return r.Price
	case SortVolume:
		return r.Volume24h
	case SortChange:
		return r.Change24h
	default:
		return r.MarketCap
	}
}

// ParseSortKey parses the query-string name of a sort key.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if strings.EqualFold(s, k.Param()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// SortDirection orders the derived list.
type SortDirection int

const (
	Descending SortDirection = iota
	Ascending
)

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

func (d SortDirection) String() string {
	if d == Ascending {
		return "ascending"
	}
	return "descending"
}

// ParseDirection accepts asc/ascending and desc/descending.
func ParseDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "", "desc", "descending":
		return Descending, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Sort is the active sort specification.
type Sort struct {
	Key       SortKey
	Direction SortDirection
}

// DefaultSort is market cap, highest first.
var DefaultSort = Sort{Key: SortMarketCap, Direction: Descending}

// Record is one tracked token.
type Record struct {
	ID              string
	Name            string
	Symbol          string
	Price           float64
	Change24h       float64 // fraction: 0.05 = +5%
	MarketCap       float64
	Volume24h       float64
	Category        Category
	History         []float64 // fixed length, oldest first
	Liquidity       float64
	Holders         int
	Transactions24h int
}

// Clone returns a deep copy so callers never share the history slice.
func (r Record) Clone() Record {
	r.History = append([]float64(nil), r.History...)
	return r
}

// Update carries the fields a generator tick replaces on one record.
type Update struct {
	ID        string
	Price     float64
	Change24h float64
	History   []float64
}

// Apply returns a copy of r with the update's fields replaced.
func (r Record) Apply(u Update) Record {
	out := r
	out.Price = u.Price
	out.Change24h = u.Change24h
	out.History = append([]float64(nil), u.History...)
	return out
}

// Update returns the record's tick fields as an update.
func (r Record) Update() Update {
	return Update{
		ID:        r.ID,
		Price:     r.Price,
		Change24h: r.Change24h,
		History:   append([]float64(nil), r.History...),
	}
}

// Totals holds the footer aggregates.
type Totals struct {
	Count     int
	MarketCap float64
	Volume24h float64
}

// Sum computes totals over the given records.
func Sum(records []Record) Totals {
	t := Totals{Count: len(records)}
	for i := range records {
		t.MarketCap += records[i].MarketCap
		t.Volume24h += records[i].Volume24h
	}
	return t
}

// CloneAll deep-copies a record list.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}

// Find returns the record with the given ID.
func Find(records []Record, id string) (Record, bool) {
	for i := range records {
		if records[i].ID == id {
			return records[i], true
		}
	}
	return Record{}, false
}
