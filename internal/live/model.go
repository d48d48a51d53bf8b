// Package live provides the shared in-memory token model on the feed server,
// with pub/sub fan-out of price updates for gRPC and WebSocket streaming.
package live

import (
	"sync"

	"github.com/google/uuid"

	"tokenscope/internal/token"
)

// Event is delivered to subscribers for every applied update.
type Event struct {
	Update token.Update
	Seq    uint64
}

// LiveModel holds the current token records and fans applied updates out to
// subscribers. It is safe for concurrent use.
type LiveModel struct {
	mu      sync.RWMutex
	records []token.Record
	seq     uint64

	subsMu sync.Mutex
	subs   map[string]chan Event
}

// NewLiveModel creates a model holding a private copy of records.
func NewLiveModel(records []token.Record) *LiveModel {
	return &LiveModel{
		records: token.CloneAll(records),
		subs:    make(map[string]chan Event),
	}
}

// Apply replaces price, change and history on the record with u.ID and
// notifies subscribers. Returns false if no record has that ID.
func (m *LiveModel) Apply(u token.Update) bool {
	m.mu.Lock()
	idx := -1
	for i := range m.records {
		if m.records[i].ID == u.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false
	}
	m.records[idx] = m.records[idx].Apply(u)
	m.seq++
	evt := Event{Update: m.records[idx].Update(), Seq: m.seq}
	m.mu.Unlock()

	// Notify subscribers (non-blocking send).
	m.subsMu.Lock()
	for _, ch := range m.subs {
		select {
		case ch <- evt:
		default:
			// Slow subscriber, drop event.
		}
	}
	m.subsMu.Unlock()

	return true
}

// Snapshot returns a deep copy of the current records in seed order.
func (m *LiveModel) Snapshot() []token.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return token.CloneAll(m.records)
}

// Get returns a copy of the record with the given ID.
func (m *LiveModel) Get(id string) (token.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := token.Find(m.records, id)
	if !ok {
		return token.Record{}, false
	}
	return r.Clone(), true
}

// Sequence returns the number of updates applied so far.
func (m *LiveModel) Sequence() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// Subscribe creates a new subscription channel for update events.
func (m *LiveModel) Subscribe(bufSize int) (id string, ch <-chan Event) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	id = uuid.NewString()
	c := make(chan Event, bufSize)
	m.subs[id] = c
	return id, c
}

// Unsubscribe removes a subscription and closes its channel.
func (m *LiveModel) Unsubscribe(id string) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if ch, ok := m.subs[id]; ok {
		close(ch)
		delete(m.subs, id)
	}
}

// SubscriberCount returns the number of open subscriptions.
func (m *LiveModel) SubscriberCount() int {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	return len(m.subs)
}
