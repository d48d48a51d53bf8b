package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tokenscope/internal/live"
	"tokenscope/internal/mockfeed"
	"tokenscope/internal/token"
	"tokenscope/internal/util"
)

// Sink receives everything a feed produces. Calls come from the feed's own
// goroutine.
type Sink interface {
	Snapshot(records []token.Record)
	Update(u token.Update)
	Status(msg string)
}

// Feed streams records into sink until ctx is cancelled. A nil error after
// cancellation is the normal exit.
type Feed func(ctx context.Context, sink Sink) error

// LocalFeed runs the mock generator in-process.
func LocalFeed(gen *mockfeed.Generator) Feed {
	return func(ctx context.Context, sink Sink) error {
		stop := gen.Start(ctx, sink.Update)
		<-ctx.Done()
		stop()
		return nil
	}
}

var errStreamEnded = errors.New("feed stream ended")

// RemoteFeed mirrors a feed server over gRPC, reconnecting with exponential
// backoff. It gives up after attempts consecutive syncs fail before delivering
// a snapshot; a stream that got its snapshot starts the count over.
func RemoteFeed(client *live.Client, attempts int, log *slog.Logger) Feed {
	return func(ctx context.Context, sink Sink) error {
		for {
			err := util.Retry(ctx, attempts, 500*time.Millisecond, 10*time.Second, func(attempt int) error {
				if attempt > 1 {
					sink.Status(fmt.Sprintf("reconnecting (attempt %d/%d)", attempt, attempts))
				}
				synced := false
				err := client.Sync(ctx, func(rs []token.Record) {
					synced = true
					sink.Status("connected")
					sink.Snapshot(rs)
				}, sink.Update)
				if ctx.Err() != nil {
					return nil
				}
				if err == nil {
					err = errStreamEnded
				}
				if synced {
					log.Warn("feed stream dropped, reconnecting", "error", err)
					sink.Status("reconnecting")
					return nil
				}
				log.Warn("feed sync failed", "attempt", attempt, "error", err)
				return err
			})
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}
