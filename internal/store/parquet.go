package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"tokenscope/internal/token"
)

// Compile-time interface check.
var _ Recorder = (*ParquetRecorder)(nil)

// ParquetRecorder buffers ticks in memory and writes them to one Parquet file
// per UTC day on Flush and Close.
type ParquetRecorder struct {
	DataDir string

	mu  sync.Mutex
	buf []Tick
}

// NewParquetRecorder creates a recorder rooted at dataDir.
func NewParquetRecorder(dataDir string) *ParquetRecorder {
	return &ParquetRecorder{DataDir: dataDir}
}

// Record buffers one tick.
func (p *ParquetRecorder) Record(_ context.Context, u token.Update, t time.Time) error {
	p.mu.Lock()
	p.buf = append(p.buf, NewTick(u, t))
	p.mu.Unlock()
	return nil
}

// Buffered returns the number of ticks waiting for the next flush.
func (p *ParquetRecorder) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// Flush merges buffered ticks into their day files. On error the unwritten
// ticks stay buffered.
func (p *ParquetRecorder) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) == 0 {
		return nil
	}

	groups := make(map[string][]Tick)
	for _, t := range p.buf {
		date := time.UnixMilli(t.RecordedAt).UTC().Format("2006-01-02")
		groups[date] = append(groups[date], t)
	}

	var failed []Tick
	var errs []error
	for date, ticks := range groups {
		path := p.dayPath(date)
		existing, err := ReadTicks(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			failed = append(failed, ticks...)
			errs = append(errs, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		if err := writeParquetFile(path, mergeTicks(existing, ticks)); err != nil {
			failed = append(failed, ticks...)
			errs = append(errs, fmt.Errorf("writing ticks for %s: %w", date, err))
		}
	}
	p.buf = failed
	return errors.Join(errs...)
}

// Close flushes the buffer.
func (p *ParquetRecorder) Close() error {
	return p.Flush()
}

// Path returns the file holding ticks recorded on t's UTC day.
// Layout: <DataDir>/ticks/<YYYY-MM-DD>.parquet
func (p *ParquetRecorder) Path(t time.Time) string {
	return p.dayPath(t.UTC().Format("2006-01-02"))
}

func (p *ParquetRecorder) dayPath(date string) string {
	return filepath.Join(p.DataDir, "ticks", date+".parquet")
}

// ReadTicks reads every tick from a Parquet file.
func ReadTicks(path string) ([]Tick, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return parquet.ReadFile[Tick](path)
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

// mergeTicks deduplicates ticks by (id, recorded_at), preferring incoming
// ticks over existing ones. Results are sorted by time, then id.
func mergeTicks(existing, incoming []Tick) []Tick {
	type key struct {
		id string
		ts int64
	}
	seen := make(map[key]Tick, len(existing)+len(incoming))
	for _, t := range existing {
		seen[key{t.ID, t.RecordedAt}] = t
	}
	for _, t := range incoming {
		seen[key{t.ID, t.RecordedAt}] = t
	}

	merged := make([]Tick, 0, len(seen))
	for _, t := range seen {
		merged = append(merged, t)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].RecordedAt != merged[j].RecordedAt {
			return merged[i].RecordedAt < merged[j].RecordedAt
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}
