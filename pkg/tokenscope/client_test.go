package tokenscope

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenscope/internal/httpapi"
	"tokenscope/internal/live"
	"tokenscope/internal/store"
	"tokenscope/internal/token"
)

type fixedHistory []store.Tick

func (f fixedHistory) History(_ context.Context, id string, limit int) ([]store.Tick, error) {
	var out []store.Tick
	for _, t := range f {
		if t.ID == id && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func newTestClient(t *testing.T, withHistory bool) *Client {
	t.Helper()
	model := live.NewLiveModel(token.Seed())
	api := httpapi.NewServer(model, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if withHistory {
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		api.SetHistory(fixedHistory{
			{ID: "1", Price: 0.9, Change24h: 0.1, RecordedAt: at.Add(time.Second).UnixMilli()},
			{ID: "1", Price: 0.86, Change24h: 0.05, RecordedAt: at.UnixMilli()},
		})
	}
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8080/")
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestTokens(t *testing.T) {
	c := newTestClient(t, false)
	ctx := context.Background()

	list, err := c.Tokens(ctx, Query{})
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if list.Matched != 8 || list.Tokens[0].Symbol != "AXC" || list.Sort != "marketCap" {
		t.Errorf("default list = %d tokens, first %s, sort %s", list.Matched, list.Tokens[0].Symbol, list.Sort)
	}

	list, err = c.Tokens(ctx, Query{Sort: "price", Direction: "asc", Category: "graduated"})
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if list.Matched != 2 || list.Tokens[0].ID != "4" || list.Totals.Count != 8 {
		t.Errorf("graduated by price = %+v", list)
	}

	list, err = c.Tokens(ctx, Query{Search: "wave"})
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if list.Matched != 1 || list.Query != "wave" {
		t.Errorf("search wave matched %d, q %q", list.Matched, list.Query)
	}

	if _, err := c.Tokens(ctx, Query{Sort: "bogus"}); err == nil {
		t.Error("expected error for unknown sort key")
	}
}

func TestToken(t *testing.T) {
	c := newTestClient(t, false)
	tok, err := c.Token(context.Background(), "5")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.Name != "HyperChain" || tok.Category != "new" || len(tok.History) != 7 || tok.Sparkline == "" {
		t.Errorf("token = %+v", tok)
	}

	_, err = c.Token(context.Background(), "404")
	if !IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestHistory(t *testing.T) {
	c := newTestClient(t, false)
	_, err := c.History(context.Background(), "1", 0)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("history without recorder: err = %v", err)
	}

	c = newTestClient(t, true)
	ticks, err := c.History(context.Background(), "1", 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(ticks) != 1 || ticks[0].Price != 0.9 {
		t.Fatalf("ticks = %+v", ticks)
	}
	want := time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC)
	if !ticks[0].RecordedAt.Equal(want) {
		t.Errorf("RecordedAt = %v, want %v", ticks[0].RecordedAt, want)
	}
}

func TestStats(t *testing.T) {
	c := newTestClient(t, false)
	st, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Tokens != 8 || st.Updates != 0 {
		t.Errorf("stats = %+v", st)
	}
}
