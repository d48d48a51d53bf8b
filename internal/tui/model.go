// Package tui is the terminal token dashboard: a bubbletea program that
// renders the board, routes keyboard and mouse intents to it and drains a
// feed of live updates on its event loop.
package tui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tokenscope/internal/dashboard"
	"tokenscope/internal/token"
)

const (
	defaultLoadingDelay = 1500 * time.Millisecond
	defaultSkeletonRows = 5
	eventBuffer         = 256
)

// Messages.
type loadedMsg struct{}
type flashTickMsg time.Time
type snapshotMsg []token.Record
type updateMsg token.Update
type statusMsg string
type feedDoneMsg struct{ err error }

// Options configures a dashboard Model.
type Options struct {
	Seed          []token.Record
	Feed          Feed // nil: updates arrive only as messages
	LoadingDelay  time.Duration
	FlashDuration time.Duration
	SkeletonRows  int
	Title         string
	Logger        *slog.Logger
	Now           func() time.Time
}

// chanSink forwards feed output to the event loop.
type chanSink struct {
	ctx context.Context
	ch  chan<- tea.Msg
}

func (s chanSink) send(msg tea.Msg) {
	select {
	case s.ch <- msg:
	case <-s.ctx.Done():
	}
}

func (s chanSink) Snapshot(rs []token.Record) { s.send(snapshotMsg(rs)) }
func (s chanSink) Update(u token.Update)      { s.send(updateMsg(u)) }
func (s chanSink) Status(msg string)          { s.send(statusMsg(msg)) }

// Model is the bubbletea model of the dashboard.
type Model struct {
	board   *dashboard.Board
	flashes *dashboard.Flashes

	feed    Feed
	events  chan tea.Msg
	stop    func()
	stopped *sync.Once

	loadingDelay time.Duration
	skeletonRows int
	title        string
	log          *slog.Logger
	now          func() time.Time

	spinner spinner.Model
	search  textinput.Model
	help    help.Model

	width, height int

	selectedID string
	modalID    string
	popoverID  string
	status     string
	feedErr    error
}

// New creates a dashboard in its loading phase.
func New(opts Options) Model {
	if opts.LoadingDelay <= 0 {
		opts.LoadingDelay = defaultLoadingDelay
	}
	if opts.SkeletonRows <= 0 {
		opts.SkeletonRows = defaultSkeletonRows
	}
	if opts.Title == "" {
		opts.Title = "TokenScope"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "name or symbol"
	ti.CharLimit = 32
	ti.Width = 24

	return Model{
		board:        dashboard.NewBoard(token.CloneAll(opts.Seed)),
		flashes:      dashboard.NewFlashes(opts.FlashDuration),
		feed:         opts.Feed,
		events:       make(chan tea.Msg, eventBuffer),
		stopped:      new(sync.Once),
		loadingDelay: opts.LoadingDelay,
		skeletonRows: opts.SkeletonRows,
		title:        opts.Title,
		log:          opts.Logger,
		now:          opts.Now,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		search:       ti,
		help:         help.New(),
		width:        100,
		height:       30,
	}
}

// Init starts the spinner and the loading timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.Tick(m.loadingDelay, func(time.Time) tea.Msg { return loadedMsg{} }),
	)
}

// Shutdown stops the feed. It is safe to call more than once.
func (m Model) Shutdown() {
	m.stopped.Do(func() {
		if m.stop != nil {
			m.stop()
		}
	})
}

// startFeed launches the feed goroutine and returns the stop handle.
func (m Model) startFeed() func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sink := chanSink{ctx: ctx, ch: m.events}
	feed := m.feed
	go func() {
		defer close(done)
		err := feed(ctx, sink)
		sink.send(feedDoneMsg{err: err})
	}()
	return func() {
		cancel()
		<-done
	}
}

// waitForEvent receives the next feed message. Exactly one is outstanding
// while a feed runs.
func (m Model) waitForEvent() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg { return <-ch }
}

func (m Model) flashTick() tea.Cmd {
	return tea.Tick(m.flashes.TTL(), func(t time.Time) tea.Msg { return flashTickMsg(t) })
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.board.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if !m.board.FinishLoading() {
			return m, nil
		}
		m.log.Info("dashboard loaded", "records", len(m.board.Records()))
		m.ensureSelection()
		if m.feed == nil {
			return m, nil
		}
		m.stop = m.startFeed()
		return m, m.waitForEvent()

	case updateMsg:
		m.applyUpdate(token.Update(msg))
		return m, tea.Batch(m.waitForEvent(), m.flashTick())

	case snapshotMsg:
		m.applySnapshot([]token.Record(msg))
		return m, tea.Batch(m.waitForEvent(), m.flashTick())

	case statusMsg:
		m.status = string(msg)
		return m, m.waitForEvent()

	case feedDoneMsg:
		if msg.err != nil {
			m.feedErr = msg.err
			m.log.Error("feed stopped", "error", msg.err)
		}
		return m, nil

	case flashTickMsg:
		m.flashes.Sweep(time.Time(msg))
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.search.Focused() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyUpdate applies one update and flashes the cells that changed.
func (m *Model) applyUpdate(u token.Update) {
	if !m.board.ApplyUpdate(u) {
		m.log.Debug("ignoring update for unknown token", "id", u.ID)
		return
	}
	m.markFlashes(u.ID)
}

// applySnapshot swaps in a full record set received from a feed server.
func (m *Model) applySnapshot(rs []token.Record) {
	m.board.Replace(rs)
	for _, r := range rs {
		m.markFlashes(r.ID)
	}
	m.ensureSelection()
}

func (m *Model) markFlashes(id string) {
	cur, ok := m.board.Record(id)
	if !ok {
		return
	}
	prev, ok := m.board.Previous(id)
	if !ok {
		return
	}
	now := m.now()
	m.flashes.Mark(id, dashboard.FieldPrice, prev.Price, cur.Price, now)
	m.flashes.Mark(id, dashboard.FieldChange, prev.Change24h, cur.Change24h, now)
}

// quit stops the feed and ends the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Shutdown()
	return m, tea.Quit
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.search.Focused() {
		switch msg.String() {
		case "esc", "enter":
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.board.SetSearch(m.search.Value())
		m.ensureSelection()
		return m, cmd
	}

	if m.modalID != "" {
		switch {
		case key.Matches(msg, keys.Close), key.Matches(msg, keys.Open):
			m.modalID = ""
		case key.Matches(msg, keys.Quit):
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Close):
		m.popoverID = ""
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Search):
		m.popoverID = ""
		return m, m.search.Focus()
	case key.Matches(msg, keys.NextFilter):
		m.cycleFilter(1)
	case key.Matches(msg, keys.PrevFilter):
		m.cycleFilter(-1)
	case key.Matches(msg, keys.Filter):
		m.selectFilter(int(msg.String()[0] - '0'))
	case key.Matches(msg, keys.SortCap):
		m.board.SetSort(token.SortMarketCap)
	case key.Matches(msg, keys.SortVolume):
		m.board.SetSort(token.SortVolume)
	case key.Matches(msg, keys.SortChange):
		m.board.SetSort(token.SortChange)
	case key.Matches(msg, keys.SortPrice):
		m.board.SetSort(token.SortPrice)
	case key.Matches(msg, keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, keys.Open):
		if m.selectedID != "" && !m.board.Loading() {
			m.popoverID = ""
			m.modalID = m.selectedID
		}
	case key.Matches(msg, keys.Info):
		m.togglePopover(m.selectedID)
	}
	return m, nil
}

func (m *Model) togglePopover(id string) {
	if id == "" || m.board.Loading() {
		return
	}
	if m.popoverID == id {
		m.popoverID = ""
		return
	}
	m.popoverID = id
}

func (m *Model) selectFilter(i int) {
	filters := token.Filters()
	if i < 0 || i >= len(filters) {
		return
	}
	m.board.SetFilter(filters[i])
	m.ensureSelection()
}

func (m *Model) cycleFilter(delta int) {
	filters := token.Filters()
	cur := 0
	for i, f := range filters {
		if f == m.board.Filter() {
			cur = i
			break
		}
	}
	m.selectFilter((cur + delta + len(filters)) % len(filters))
}

// ensureSelection keeps the selected row inside the derived list, falling
// back to the first row.
func (m *Model) ensureSelection() {
	rows := m.board.Derive()
	for _, r := range rows {
		if r.ID == m.selectedID {
			return
		}
	}
	m.selectedID = ""
	if len(rows) > 0 {
		m.selectedID = rows[0].ID
	}
	if m.popoverID != "" {
		if _, ok := token.Find(rows, m.popoverID); !ok {
			m.popoverID = ""
		}
	}
}

func (m *Model) moveSelection(delta int) {
	rows := m.board.Derive()
	if len(rows) == 0 {
		return
	}
	cur := 0
	for i, r := range rows {
		if r.ID == m.selectedID {
			cur = i
			break
		}
	}
	cur = max(0, min(len(rows)-1, cur+delta))
	m.selectedID = rows[cur].ID
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if m.modalID != "" {
		x, y, w, h := m.modalBounds()
		inside := msg.X >= x && msg.X < x+w && msg.Y >= y && msg.Y < y+h
		if !inside {
			m.modalID = ""
		}
		return m, nil
	}

	_, hits := m.render()
	hit, ok := hits.at(msg.X, msg.Y)

	// An open popover swallows the click that closes it, unless the click
	// lands on another row's info cell.
	if m.popoverID != "" {
		if ok && hit.kind == hitPopover {
			return m, nil
		}
		wasOpen := m.popoverID
		m.popoverID = ""
		if !ok || hit.kind != hitInfo || hit.id == wasOpen {
			return m, nil
		}
	}
	if !ok || hit.kind != hitSearch {
		m.search.Blur()
	}
	if !ok {
		return m, nil
	}

	switch hit.kind {
	case hitSearch:
		return m, m.search.Focus()
	case hitFilter:
		m.selectFilter(hit.index)
	case hitHeader:
		m.board.SetSort(hit.sortKey)
	case hitInfo:
		m.selectedID = hit.id
		m.togglePopover(hit.id)
	case hitRow:
		m.selectedID = hit.id
		m.modalID = hit.id
	}
	return m, nil
}
