package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tokenscope/internal/dashboard"
	"tokenscope/internal/mockfeed"
	"tokenscope/internal/token"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(feed Feed) Model {
	return New(Options{
		Seed:   token.Seed(),
		Feed:   feed,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return testTime },
	})
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = send(t, m, msg)
	}
	return m
}

func click(t *testing.T, m Model, x, y int) Model {
	t.Helper()
	m, _ = send(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	return m
}

func loaded(t *testing.T) Model {
	t.Helper()
	m, _ := send(t, newTestModel(nil), loadedMsg{})
	return m
}

// region finds the first click region of the given kind and record.
func region(t *testing.T, m Model, kind hitKind, id string) hit {
	t.Helper()
	_, hits := m.render()
	for _, h := range hits {
		if h.kind == kind && h.id == id {
			return h
		}
	}
	t.Fatalf("no region of kind %d for %q", kind, id)
	return hit{}
}

func TestLoadingShowsSkeleton(t *testing.T) {
	m := newTestModel(nil)
	view := m.View()
	if strings.Contains(view, "NanoBanana") {
		t.Error("records rendered while loading")
	}
	if got := strings.Count(view, "░░"); got < defaultSkeletonRows {
		t.Errorf("skeleton rows missing: %d placeholder cells", got)
	}

	m, _ = send(t, m, loadedMsg{})
	view = m.View()
	if !strings.Contains(view, "AxiomCore") || strings.Contains(view, "░░") {
		t.Error("loaded view still shows placeholders or lacks records")
	}
	if m.selectedID != "3" {
		t.Errorf("selectedID = %q, want first row 3", m.selectedID)
	}

	// Enter during loading must not open anything.
	m2 := press(t, newTestModel(nil), "enter", "i")
	if m2.modalID != "" || m2.popoverID != "" {
		t.Error("overlay opened while loading")
	}
}

func TestSortKeys(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "m")
	if m.board.Sort() != (token.Sort{Key: token.SortMarketCap, Direction: token.Ascending}) {
		t.Errorf("after m: %+v", m.board.Sort())
	}
	m = press(t, m, "p")
	if m.board.Sort() != (token.Sort{Key: token.SortPrice, Direction: token.Descending}) {
		t.Errorf("after p: %+v", m.board.Sort())
	}
	if !strings.Contains(m.renderHeader(), "Price ▼") {
		t.Errorf("header lacks active arrow: %q", m.renderHeader())
	}
	if strings.Contains(m.renderHeader(), "Market Cap ▲") || strings.Contains(m.renderHeader(), "Market Cap ▼") {
		t.Error("inactive column shows an arrow")
	}

	m = press(t, m, "v", "c")
	if m.board.Sort().Key != token.SortChange {
		t.Errorf("after v c: %+v", m.board.Sort())
	}
}

func TestHeaderClickSorts(t *testing.T) {
	m := loaded(t)
	_, hits := m.render()
	for _, h := range hits {
		if h.kind == hitHeader && h.sortKey == token.SortVolume {
			m = click(t, m, h.x0, h.y0)
			if m.board.Sort() != (token.Sort{Key: token.SortVolume, Direction: token.Descending}) {
				t.Errorf("after header click: %+v", m.board.Sort())
			}
			return
		}
	}
	t.Fatal("no volume header region")
}

func TestFilters(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "3")
	if m.board.Filter() != token.FilterCategory(token.CategoryGraduated) {
		t.Fatalf("filter = %v", m.board.Filter())
	}
	if m.selectedID != "7" {
		t.Errorf("selection did not move into the filtered list: %q", m.selectedID)
	}
	view := m.View()
	if strings.Contains(view, "AxiomCore") || !strings.Contains(view, "CryptoWave") {
		t.Error("graduated filter not applied to the view")
	}

	m = press(t, m, "tab")
	if !m.board.Filter().IsAll() {
		t.Errorf("tab from Migrated = %v, want All", m.board.Filter())
	}
	m = press(t, m, "tab")
	if m.board.Filter() != token.FilterCategory(token.CategoryNew) {
		t.Errorf("tab from All = %v, want New pairs", m.board.Filter())
	}

	_, hits := m.render()
	for _, h := range hits {
		if h.kind == hitFilter && h.index == 2 {
			m = click(t, m, h.x0, h.y0)
		}
	}
	if m.board.Filter() != token.FilterCategory(token.CategoryLateStage) {
		t.Errorf("filter click = %v, want Final Stretch", m.board.Filter())
	}
}

func TestSearch(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "/")
	if !m.search.Focused() {
		t.Fatal("search not focused after /")
	}
	m = press(t, m, "z", "z", "z")
	if m.board.Search() != "zzz" {
		t.Errorf("Search() = %q", m.board.Search())
	}
	if !strings.Contains(m.View(), noResults) {
		t.Error("no-results message missing")
	}
	if m.board.Sort().Key != token.SortMarketCap {
		t.Error("keystrokes in the search box reached the sort bindings")
	}

	m = press(t, m, "esc")
	if m.search.Focused() {
		t.Error("esc did not leave the search box")
	}

	m = press(t, m, "/")
	for range 3 {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = press(t, m, "w", "a", "v", "e", "enter")
	if got := m.board.Derive(); len(got) != 1 || got[0].ID != "7" {
		t.Errorf("search wave = %v", got)
	}
}

func TestUpdateFlashes(t *testing.T) {
	m := loaded(t)
	hist := []float64{0.82, 0.85, 0.83, 0.85, 0.87, 0.85, 0.9}
	m, cmd := send(t, m, updateMsg{ID: "1", Price: 0.9, Change24h: 0.05, History: hist})
	if cmd == nil {
		t.Error("update did not schedule a flash sweep")
	}

	r, _ := m.board.Record("1")
	if r.Price != 0.9 {
		t.Errorf("price = %v, want 0.9", r.Price)
	}
	if got := m.flashes.Active("1", dashboard.FieldPrice, testTime); got != dashboard.MoveUp {
		t.Errorf("price flash = %v, want up", got)
	}
	if got := m.flashes.Active("1", dashboard.FieldChange, testTime); got != dashboard.MoveNone {
		t.Errorf("unchanged change cell flashed: %v", got)
	}

	m, _ = send(t, m, flashTickMsg(testTime.Add(time.Second)))
	if m.flashes.Len() != 0 {
		t.Errorf("flashes left after sweep: %d", m.flashes.Len())
	}

	m, _ = send(t, m, updateMsg{ID: "nope", Price: 1})
	if m.flashes.Len() != 0 {
		t.Error("unknown update flashed")
	}
}

func TestSnapshotReplacesRecords(t *testing.T) {
	m := loaded(t)
	recs := token.Seed()
	recs[2].Price = 11
	m, _ = send(t, m, snapshotMsg(recs))
	if r, _ := m.board.Record("3"); r.Price != 11 {
		t.Errorf("price = %v after snapshot", r.Price)
	}
	if m.flashes.Active("3", dashboard.FieldPrice, testTime) != dashboard.MoveDown {
		t.Error("snapshot change did not flash")
	}
}

func TestModal(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "down", "enter")
	if m.modalID != "8" {
		t.Fatalf("modalID = %q, want 8 (second by market cap)", m.modalID)
	}
	view := m.View()
	for _, want := range []string{"BlockForce", "Price history", "Liquidity", "$18.00M", "$8.92", "32,450", "18,920"} {
		if !strings.Contains(view, want) {
			t.Errorf("modal lacks %q", want)
		}
	}

	x, y, w, h := m.modalBounds()
	if w == 0 || h == 0 {
		t.Fatal("modal has no bounds")
	}
	m = click(t, m, x+w/2, y+h/2)
	if m.modalID == "" {
		t.Error("click inside the modal closed it")
	}
	m = click(t, m, 0, 0)
	if m.modalID != "" {
		t.Error("click outside the modal did not close it")
	}

	m = press(t, m, "enter", "esc")
	if m.modalID != "" {
		t.Error("esc did not close the modal")
	}

	row := region(t, m, hitRow, "5")
	m = click(t, m, row.x0+3, row.y0)
	if m.modalID != "5" || m.selectedID != "5" {
		t.Errorf("row click: modal %q, selected %q", m.modalID, m.selectedID)
	}
	if !strings.Contains(m.View(), "19,870") {
		t.Error("modal does not show full-precision holders")
	}
}

func TestClickBlursSearch(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "/")
	row := region(t, m, hitRow, "1")
	m = click(t, m, row.x0+3, row.y0)
	if m.search.Focused() {
		t.Fatal("row click left the search box focused")
	}
	if m.modalID != "1" {
		t.Fatalf("modalID = %q, want 1", m.modalID)
	}
	m = press(t, m, "esc")
	if m.modalID != "" {
		t.Error("first esc after a row click did not close the modal")
	}

	m = press(t, m, "/", "q")
	hdr := region(t, m, hitHeader, "")
	m = click(t, m, hdr.x0, hdr.y0)
	if m.search.Focused() {
		t.Error("header click left the search box focused")
	}
	m = press(t, m, "p")
	if m.board.Search() != "q" || m.board.Sort().Key != token.SortPrice {
		t.Errorf("search %q, sort %+v: key after blur went to the wrong place", m.board.Search(), m.board.Sort())
	}
}

func TestPopoverSwallowsOutsideClick(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "i")

	row := region(t, m, hitRow, "8")
	m = click(t, m, row.x0+3, row.y0)
	if m.popoverID != "" || m.modalID != "" {
		t.Errorf("row click with popover open: popover %q, modal %q", m.popoverID, m.modalID)
	}

	m = press(t, m, "i")
	hdr := region(t, m, hitHeader, "")
	m = click(t, m, hdr.x0, hdr.y0)
	if m.popoverID != "" || m.board.Sort() != token.DefaultSort {
		t.Errorf("header click with popover open: popover %q, sort %+v", m.popoverID, m.board.Sort())
	}

	m = press(t, m, "i")
	info := region(t, m, hitInfo, "6")
	m = click(t, m, info.x0, info.y0)
	if m.popoverID != "6" || m.selectedID != "6" {
		t.Errorf("info click on another row: popover %q, selected %q", m.popoverID, m.selectedID)
	}
}

func TestPopover(t *testing.T) {
	m := loaded(t)
	if !strings.Contains(m.renderStatus(), "More information") {
		t.Error("tooltip hint missing for the selected row")
	}

	m = press(t, m, "i")
	if m.popoverID != "3" || m.modalID != "" {
		t.Fatalf("popover %q, modal %q", m.popoverID, m.modalID)
	}
	if !strings.Contains(m.View(), "Transactions") {
		t.Error("popover content missing")
	}

	pop := region(t, m, hitPopover, "3")
	m = click(t, m, pop.x0+1, pop.y0+1)
	if m.popoverID != "3" {
		t.Error("click inside the popover closed it")
	}

	m = press(t, m, "esc")
	if m.popoverID != "" {
		t.Error("esc did not close the popover")
	}

	info := region(t, m, hitInfo, "1")
	m = click(t, m, info.x0, info.y0)
	if m.popoverID != "1" {
		t.Fatalf("info click popover = %q, want 1", m.popoverID)
	}
	if m.modalID != "" {
		t.Error("info click opened the modal")
	}
	if !strings.Contains(m.View(), "12.5K") {
		t.Error("popover does not show compact holders")
	}

	m = click(t, m, info.x0, info.y0)
	if m.popoverID != "" {
		t.Error("second info click did not close the popover")
	}

	m = press(t, m, "i")
	m = click(t, m, 0, 0)
	if m.popoverID != "" {
		t.Error("click outside did not close the popover")
	}
}

func TestFooterTotals(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "3")
	footer := m.renderFooter()
	for _, want := range []string{"Total tokens: 8", "$2.67B", "$477.00M"} {
		if !strings.Contains(footer, want) {
			t.Errorf("footer %q lacks %q", footer, want)
		}
	}
}

func TestFeedLifecycle(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan struct{})
	feed := func(ctx context.Context, sink Sink) error {
		close(started)
		sink.Status("connected")
		<-ctx.Done()
		close(stopped)
		return nil
	}

	m := newTestModel(feed)
	select {
	case <-started:
		t.Fatal("feed started during loading")
	default:
	}

	m, cmd := send(t, m, loadedMsg{})
	if cmd == nil {
		t.Fatal("loading did not start listening to the feed")
	}
	<-started
	msg := cmd()
	if s, ok := msg.(statusMsg); !ok || s != "connected" {
		t.Fatalf("first feed message = %#v", msg)
	}
	m, _ = send(t, m, msg)
	if m.status != "connected" {
		t.Errorf("status = %q", m.status)
	}

	_, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("feed not stopped on quit")
	}
	m.Shutdown()
}

func TestLocalFeed(t *testing.T) {
	gen := mockfeed.New(token.Seed(), mockfeed.WithInterval(5*time.Millisecond))
	m := newTestModel(LocalFeed(gen))
	m, cmd := send(t, m, loadedMsg{})
	defer m.Shutdown()

	msg := cmd()
	u, ok := msg.(updateMsg)
	if !ok {
		t.Fatalf("first feed message = %#v, want an update", msg)
	}
	if u.ID != "1" || u.Price <= 0 || len(u.History) != 7 {
		t.Errorf("update = %+v", u)
	}
}
