package tui

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"tokenscope/internal/live"
	"tokenscope/internal/token"
)

type recordingSink struct {
	snapshots chan []token.Record
	updates   chan token.Update
	statuses  chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		snapshots: make(chan []token.Record, 4),
		updates:   make(chan token.Update, 64),
		statuses:  make(chan string, 16),
	}
}

func (s *recordingSink) Snapshot(rs []token.Record) { s.snapshots <- rs }
func (s *recordingSink) Update(u token.Update)      { s.updates <- u }
func (s *recordingSink) Status(msg string)          { s.statuses <- msg }

func bufClient(t *testing.T, lis *bufconn.Listener) *live.Client {
	t.Helper()
	return live.NewClient("passthrough:///bufnet", slog.New(slog.NewTextHandler(io.Discard, nil)),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
}

func TestRemoteFeed(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	model := live.NewLiveModel(token.Seed())
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	live.NewServer(model, log).RegisterGRPC(gs)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sink := newRecordingSink()
	errCh := make(chan error, 1)
	go func() { errCh <- RemoteFeed(bufClient(t, lis), 3, log)(ctx, sink) }()

	select {
	case s := <-sink.statuses:
		if s != "connected" {
			t.Errorf("status = %q, want connected", s)
		}
	case <-ctx.Done():
		t.Fatal("no status received")
	}
	select {
	case rs := <-sink.snapshots:
		if len(rs) != 8 {
			t.Fatalf("snapshot has %d records", len(rs))
		}
	case <-ctx.Done():
		t.Fatal("no snapshot received")
	}

	model.Apply(token.Update{ID: "2", Price: 1.6, Change24h: 0.01, History: []float64{1.6}})
	select {
	case u := <-sink.updates:
		if u.ID != "2" || u.Price != 1.6 {
			t.Errorf("update = %+v", u)
		}
	case <-ctx.Done():
		t.Fatal("no update received")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("RemoteFeed returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RemoteFeed did not return after cancel")
	}
}

func TestRemoteFeedGivesUp(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	lis.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := RemoteFeed(bufClient(t, lis), 1, log)(ctx, newRecordingSink())
	if err == nil {
		t.Fatal("RemoteFeed against a closed listener returned nil")
	}
	if ctx.Err() != nil {
		t.Fatal("RemoteFeed only returned once the test context expired")
	}
}

func TestRemoteFeedReconnectsAfterSync(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	serve := func() (*grpc.Server, *bufconn.Listener) {
		lis := bufconn.Listen(1 << 20)
		gs := grpc.NewServer()
		live.NewServer(live.NewLiveModel(token.Seed()), log).RegisterGRPC(gs)
		go gs.Serve(lis)
		t.Cleanup(gs.Stop)
		return gs, lis
	}
	gs1, lis1 := serve()
	_, lis2 := serve()

	var current atomic.Pointer[bufconn.Listener]
	current.Store(lis1)
	client := live.NewClient("passthrough:///bufnet", log,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return current.Load().DialContext(ctx)
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sink := newRecordingSink()
	errCh := make(chan error, 1)
	// One attempt per round: only a budget reset after the first snapshot
	// lets the feed reach the second server.
	go func() { errCh <- RemoteFeed(client, 1, log)(ctx, sink) }()

	select {
	case <-sink.snapshots:
	case <-ctx.Done():
		t.Fatal("no snapshot from first server")
	}

	current.Store(lis2)
	gs1.Stop()

	select {
	case rs := <-sink.snapshots:
		if len(rs) != 8 {
			t.Fatalf("second snapshot has %d records", len(rs))
		}
	case err := <-errCh:
		t.Fatalf("RemoteFeed returned %v instead of reconnecting", err)
	case <-ctx.Done():
		t.Fatal("no snapshot after reconnect")
	}

	var statuses []string
	for len(sink.statuses) > 0 {
		statuses = append(statuses, <-sink.statuses)
	}
	want := []string{"connected", "reconnecting", "connected"}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %q, want %q", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %q, want %q", i, statuses[i], want[i])
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("RemoteFeed returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RemoteFeed did not return after cancel")
	}
}
