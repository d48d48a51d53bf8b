// Package store records the feed server's price ticks. Recording is optional
// and write-only from the feed's point of view: dashboards never read their
// state back from here.
package store

import (
	"context"
	"errors"
	"time"

	"tokenscope/internal/token"
)

// Tick is one recorded price update. It doubles as the Parquet schema.
type Tick struct {
	ID         string  `parquet:"id"`
	Price      float64 `parquet:"price"`
	Change24h  float64 `parquet:"change24h"`
	RecordedAt int64   `parquet:"recorded_at,timestamp(millisecond)"` // Unix ms
}

// NewTick builds a tick from an update received at t.
func NewTick(u token.Update, t time.Time) Tick {
	return Tick{ID: u.ID, Price: u.Price, Change24h: u.Change24h, RecordedAt: t.UnixMilli()}
}

// Recorder persists price updates.
type Recorder interface {
	// Record stores a single update observed at t.
	Record(ctx context.Context, u token.Update, t time.Time) error

	// Close flushes anything buffered and releases resources.
	Close() error
}

// Multi fans every call out to all recorders.
type Multi []Recorder

// Record calls Record on every recorder and joins their errors.
func (m Multi) Record(ctx context.Context, u token.Update, t time.Time) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, u, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every recorder and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
