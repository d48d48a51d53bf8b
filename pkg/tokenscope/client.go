// Package tokenscope is a Go client for the tokenscope-server REST API.
package tokenscope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Token is one tracked token as served by the API.
type Token struct {
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
	Sparkline       string    `json:"sparkline"`
	Liquidity       float64   `json:"liquidity"`
	Holders         int       `json:"holders"`
	Transactions24h int       `json:"transactions24h"`
}

// Totals aggregates every token regardless of the query.
type Totals struct {
	Count     int     `json:"count"`
	MarketCap float64 `json:"marketCap"`
	Volume24h float64 `json:"volume24h"`
}

// TokenList is one page of the derived token list.
type TokenList struct {
	Tokens    []Token `json:"tokens"`
	Matched   int     `json:"matched"`
	Totals    Totals  `json:"totals"`
	Sort      string  `json:"sort"`
	Direction string  `json:"direction"`
	Category  string  `json:"category"`
	Query     string  `json:"q"`
}

// Query selects and orders the token list. Zero fields use the server
// defaults: market cap, descending, every category.
type Query struct {
	Sort      string // marketCap, price, volume24h or change24h
	Direction string // asc or desc
	Category  string // all, new, late-stage or graduated
	Search    string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Direction != "" {
		v.Set("dir", q.Direction)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	return v
}

// Tick is one recorded price observation.
type Tick struct {
	Price      float64   `json:"price"`
	Change24h  float64   `json:"change24h"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Stats describes the server's live state.
type Stats struct {
	Tokens      int    `json:"tokens"`
	Subscribers int    `json:"subscribers"`
	Updates     uint64 `json:"updates"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tokenscope: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client provides a Go SDK for interacting with the tokenscope-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new tokenscope API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Tokens retrieves the token list derived by q.
func (c *Client) Tokens(ctx context.Context, q Query) (*TokenList, error) {
	var out TokenList
	if err := c.get(ctx, "/api/tokens", q.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Token retrieves a single token by ID.
func (c *Client) Token(ctx context.Context, id string) (*Token, error) {
	var out Token
	if err := c.get(ctx, "/api/tokens/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History retrieves up to limit recorded ticks for a token, newest first.
// A non-positive limit uses the server default.
func (c *Client) History(ctx context.Context, id string, limit int) ([]Tick, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Ticks []Tick `json:"ticks"`
	}
	if err := c.get(ctx, "/api/tokens/"+url.PathEscape(id)+"/history", v, &out); err != nil {
		return nil, err
	}
	return out.Ticks, nil
}

// Stats retrieves server statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.get(ctx, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) != nil || body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
