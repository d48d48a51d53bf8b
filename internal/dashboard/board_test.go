package dashboard

import (
	"testing"
	"time"

	"tokenscope/internal/token"
)

func loadedBoard() *Board {
	b := NewBoard(token.Seed())
	b.FinishLoading()
	return b
}

func ids(rs []token.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDeriveEmptyWhileLoading(t *testing.T) {
	b := NewBoard(token.Seed())
	if !b.Loading() {
		t.Fatal("new board should be loading")
	}
	if got := b.Derive(); len(got) != 0 {
		t.Errorf("Derive() while loading returned %d records", len(got))
	}
	if !b.FinishLoading() {
		t.Error("first FinishLoading should report the transition")
	}
	if b.FinishLoading() {
		t.Error("second FinishLoading should be a no-op")
	}
	if got := len(b.Derive()); got != 8 {
		t.Errorf("Derive() after loading returned %d records, want 8", got)
	}
}

func TestDefaultSortLargestMarketCapFirst(t *testing.T) {
	b := loadedBoard()
	if b.Sort() != token.DefaultSort {
		t.Errorf("Sort() = %+v, want %+v", b.Sort(), token.DefaultSort)
	}
	got := b.Derive()
	if got[0].ID != "3" {
		t.Errorf("first record = %s (%s), want AxiomCore", got[0].ID, got[0].Name)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].MarketCap < got[i].MarketCap {
			t.Fatalf("not descending by market cap: %v", ids(got))
		}
	}
}

func TestSetSortToggles(t *testing.T) {
	b := loadedBoard()

	b.SetSort(token.SortMarketCap)
	if b.Sort().Direction != token.Ascending {
		t.Errorf("same key once: direction = %v, want ascending", b.Sort().Direction)
	}
	b.SetSort(token.SortMarketCap)
	if b.Sort().Direction != token.Descending {
		t.Errorf("same key twice: direction = %v, want descending", b.Sort().Direction)
	}

	b.SetSort(token.SortMarketCap) // ascending
	b.SetSort(token.SortPrice)
	if b.Sort() != (token.Sort{Key: token.SortPrice, Direction: token.Descending}) {
		t.Errorf("new key: sort = %+v, want price descending", b.Sort())
	}
}

func TestDeriveSortDirections(t *testing.T) {
	recs := token.Seed()
	asc := Derive(recs, "", token.FilterAll, token.Sort{Key: token.SortPrice, Direction: token.Ascending})
	if asc[0].ID != "4" || asc[len(asc)-1].ID != "3" {
		t.Errorf("price ascending = %v", ids(asc))
	}
	desc := Derive(recs, "", token.FilterAll, token.Sort{Key: token.SortChange, Direction: token.Descending})
	if desc[0].ID != "5" {
		t.Errorf("change descending first = %s, want 5 (HyperChain)", desc[0].ID)
	}
	vol := Derive(recs, "", token.FilterAll, token.Sort{Key: token.SortVolume, Direction: token.Ascending})
	if vol[0].ID != "4" {
		t.Errorf("volume ascending first = %s, want 4", vol[0].ID)
	}
	if len(recs) != 8 || recs[0].ID != "1" {
		t.Error("Derive reordered its input")
	}
}

func TestDeriveSearch(t *testing.T) {
	recs := token.Seed()
	tests := []struct {
		q    string
		want []string
	}{
		{"nano", []string{"1"}},
		{"NANO", []string{"1"}},
		{"axc", []string{"3"}},
		{"chain", []string{"5"}},
		{"c", []string{"3", "5", "7", "8"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		got := ids(Derive(recs, tt.q, token.FilterAll, token.DefaultSort))
		if !equalIDs(got, tt.want) {
			t.Errorf("Derive(search=%q) = %v, want %v", tt.q, got, tt.want)
		}
	}
	if got := Derive(recs, "", token.FilterAll, token.DefaultSort); len(got) != 8 {
		t.Errorf("empty search returned %d records, want 8", len(got))
	}
}

func TestDeriveCategoryFilterAndSearch(t *testing.T) {
	recs := token.Seed()

	grad := ids(Derive(recs, "", token.FilterCategory(token.CategoryGraduated), token.DefaultSort))
	if !equalIDs(grad, []string{"7", "4"}) {
		t.Errorf("graduated filter = %v, want [7 4]", grad)
	}

	// BlockForce is a new pair without an "a"; QuantumLeap has one but is late stage.
	got := ids(Derive(recs, "a", token.FilterCategory(token.CategoryNew), token.DefaultSort))
	if !equalIDs(got, []string{"3", "5", "1"}) {
		t.Errorf("search a + new pairs = %v, want [3 5 1]", got)
	}

	none := Derive(recs, "quantum", token.FilterCategory(token.CategoryNew), token.DefaultSort)
	if len(none) != 0 {
		t.Errorf("search and filter with no overlap returned %v", ids(none))
	}
}

func TestEmptyCategoryYieldsNoResults(t *testing.T) {
	var recs []token.Record
	for _, r := range token.Seed() {
		if r.Category != token.CategoryLateStage {
			recs = append(recs, r)
		}
	}
	b := NewBoard(recs)
	b.FinishLoading()
	b.SetFilter(token.FilterCategory(token.CategoryLateStage))
	if got := b.Derive(); len(got) != 0 {
		t.Errorf("Derive() = %v, want empty", ids(got))
	}
}

func TestApplyUpdate(t *testing.T) {
	b := loadedBoard()
	before := b.Records()
	hist := []float64{0.82, 0.85, 0.83, 0.85, 0.87, 0.85, 0.9}

	if !b.ApplyUpdate(token.Update{ID: "1", Price: 0.9, Change24h: 0.1, History: hist}) {
		t.Fatal("ApplyUpdate(id 1) returned false")
	}

	cur, _ := b.Record("1")
	if cur.Price != 0.9 {
		t.Errorf("price = %v, want 0.9", cur.Price)
	}
	prev, ok := b.Previous("1")
	if !ok || prev.Price == cur.Price {
		t.Errorf("previous price = %v, want it to differ from %v", prev.Price, cur.Price)
	}
	if before[0].Price != 0.85 {
		t.Error("ApplyUpdate mutated a list handed out earlier")
	}

	for _, r := range b.Derive() {
		if r.ID == "1" && r.Price != 0.9 {
			t.Errorf("derived price for id 1 = %v, want 0.9", r.Price)
		}
	}

	f := NewFlashes(DefaultFlashDuration)
	now := time.Unix(1_700_000_000, 0)
	if !f.Mark("1", FieldPrice, prev.Price, cur.Price, now) {
		t.Error("price change from previous snapshot should flash")
	}
	if f.Active("1", FieldPrice, now) != MoveUp {
		t.Error("0.85 -> 0.9 should flash up")
	}
}

func TestApplyUpdateUnknownID(t *testing.T) {
	b := loadedBoard()
	before := b.Records()
	if b.ApplyUpdate(token.Update{ID: "nope", Price: 1}) {
		t.Error("ApplyUpdate(unknown) returned true")
	}
	if &b.Records()[0] != &before[0] {
		t.Error("unknown update replaced the record list")
	}
}

func TestTotals(t *testing.T) {
	b := loadedBoard()
	b.SetFilter(token.FilterCategory(token.CategoryGraduated))
	tot := b.Totals()
	if tot.Count != 8 {
		t.Errorf("Totals().Count = %d, want 8 regardless of filter", tot.Count)
	}
}
