package dashboard

import (
	"sort"
	"strings"

	"tokenscope/internal/token"
)

// Derive filters records by search text and category, then sorts them by the
// given spec. Search is a case-insensitive substring match on name or symbol
// and is skipped when empty; both conditions must hold. The input slice is
// not modified.
func Derive(records []token.Record, search string, filter token.Filter, spec token.Sort) []token.Record {
	q := strings.ToLower(search)
	out := make([]token.Record, 0, len(records))
	for _, r := range records {
		if q != "" && !matchesSearch(r, q) {
			continue
		}
		if !filter.Match(r.Category) {
			continue
		}
		out = append(out, r)
	}
	sortRecords(out, spec)
	return out
}

func matchesSearch(r token.Record, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(r.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(r.Symbol), lowerQuery)
}

// sortRecords orders rs in place. Ties keep their relative order only because
// the sort is stable.
func sortRecords(rs []token.Record, spec token.Sort) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := spec.Key.Value(rs[i]), spec.Key.Value(rs[j])
		if spec.Direction == token.Ascending {
			return a < b
		}
		return a > b
	})
}
