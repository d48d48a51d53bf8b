// Package httpapi provides an HTTP REST API and WebSocket stream over the
// feed server's live model, serving the same data as the TUI dashboard in
// JSON format.
package httpapi

import (
	"tokenscope/internal/dashboard"
	"tokenscope/internal/token"
)

// TokenJSON is the JSON representation of one token record.
type TokenJSON struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	Price           float64   `json:"price"`
	Change24h       float64   `json:"change24h"`
	MarketCap       float64   `json:"marketCap"`
	Volume24h       float64   `json:"volume24h"`
	Category        string    `json:"category"`
	CategoryLabel   string    `json:"categoryLabel"`
	History         []float64 `json:"history"`
	Sparkline       string    `json:"sparkline"` // SVG path over a 100x30 box
	Liquidity       float64   `json:"liquidity"`
	Holders         int       `json:"holders"`
	Transactions24h int       `json:"transactions24h"`
}

// TotalsJSON holds the footer aggregates over every token.
type TotalsJSON struct {
	Count     int     `json:"count"`
	MarketCap float64 `json:"marketCap"`
	Volume24h float64 `json:"volume24h"`
}

// TokensResponse is the body of GET /api/tokens.
type TokensResponse struct {
	Tokens    []TokenJSON `json:"tokens"`
	Matched   int         `json:"matched"`
	Totals    TotalsJSON  `json:"totals"`
	Sort      string      `json:"sort"`
	Direction string      `json:"direction"`
	Category  string      `json:"category"`
	Query     string      `json:"q,omitempty"`
}

// StatsJSON is the body of GET /api/stats.
type StatsJSON struct {
	Tokens      int    `json:"tokens"`
	Subscribers int    `json:"subscribers"`
	Updates     uint64 `json:"updates"`
}

// UpdateJSON is one price update pushed over the WebSocket.
type UpdateJSON struct {
	ID        string    `json:"id"`
	Price     float64   `json:"price"`
	Change24h float64   `json:"change24h"`
	History   []float64 `json:"history"`
}

// WSMessage is a single WebSocket frame: a snapshot first, then updates.
type WSMessage struct {
	Type   string      `json:"type"`
	Seq    uint64      `json:"seq"`
	Tokens []TokenJSON `json:"tokens,omitempty"`
	Update *UpdateJSON `json:"update,omitempty"`
}

func tokenToJSON(r token.Record) TokenJSON {
	hist := r.History
	if hist == nil {
		hist = []float64{}
	}
	return TokenJSON{
		ID:              r.ID,
		Name:            r.Name,
		Symbol:          r.Symbol,
		Price:           r.Price,
		Change24h:       r.Change24h,
		MarketCap:       r.MarketCap,
		Volume24h:       r.Volume24h,
		Category:        r.Category.Slug(),
		CategoryLabel:   r.Category.String(),
		History:         hist,
		Sparkline:       dashboard.SparklinePath(hist),
		Liquidity:       r.Liquidity,
		Holders:         r.Holders,
		Transactions24h: r.Transactions24h,
	}
}

func tokensToJSON(rs []token.Record) []TokenJSON {
	out := make([]TokenJSON, len(rs))
	for i := range rs {
		out[i] = tokenToJSON(rs[i])
	}
	return out
}

func totalsToJSON(t token.Totals) TotalsJSON {
	return TotalsJSON{Count: t.Count, MarketCap: t.MarketCap, Volume24h: t.Volume24h}
}

func updateToJSON(u token.Update) *UpdateJSON {
	return &UpdateJSON{ID: u.ID, Price: u.Price, Change24h: u.Change24h, History: u.History}
}

// TickJSON is one recorded tick.
type TickJSON struct {
	Price      float64 `json:"price"`
	Change24h  float64 `json:"change24h"`
	RecordedAt string  `json:"recordedAt"`
}

// HistoryResponse is the body of GET /api/tokens/{id}/history, newest first.
type HistoryResponse struct {
	ID    string     `json:"id"`
	Ticks []TickJSON `json:"ticks"`
}
