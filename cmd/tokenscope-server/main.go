package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"tokenscope/internal/config"
	"tokenscope/internal/httpapi"
	"tokenscope/internal/live"
	"tokenscope/internal/mockfeed"
	"tokenscope/internal/store"
	"tokenscope/internal/token"
	"tokenscope/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logFileName := fmt.Sprintf("/tmp/tokenscope-server-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, io.MultiWriter(os.Stdout, logFile))
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	model := live.NewLiveModel(token.Seed())

	// Recorders.
	var (
		recorders store.Multi
		sqlite    *store.SQLiteRecorder
		parquet   *store.ParquetRecorder
	)
	if p := cfg.Storage.SQLitePath; p != "" {
		sqlite, err = store.NewSQLiteRecorder(p)
		if err != nil {
			log.Fatalf("opening sqlite recorder: %v", err)
		}
		recorders = append(recorders, sqlite)
		logger.Info("recording ticks to sqlite", "path", p)
	}
	if d := cfg.Storage.ParquetDir; d != "" {
		parquet = store.NewParquetRecorder(d)
		recorders = append(recorders, parquet)
		logger.Info("recording ticks to parquet", "dir", d)
	}

	var wg sync.WaitGroup
	if len(recorders) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runRecorder(ctx, model, recorders, parquet, cfg.Storage.FlushInterval, logger)
		}()
	}

	// Feed.
	gen := mockfeed.New(model.Snapshot(), mockfeed.WithInterval(cfg.Feed.Interval), mockfeed.WithLogger(logger))
	stopFeed := gen.Start(ctx, func(u token.Update) { model.Apply(u) })

	// gRPC.
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr())
	if err != nil {
		log.Fatalf("listening on %s: %v", cfg.Server.GRPCAddr(), err)
	}
	gs := grpc.NewServer()
	live.NewServer(model, logger).RegisterGRPC(gs)
	go func() {
		logger.Info("gRPC feed listening", "addr", lis.Addr().String())
		if err := gs.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
		}
	}()

	// HTTP.
	api := httpapi.NewServer(model, logger)
	if sqlite != nil {
		api.SetHistory(sqlite)
	}
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr(),
		Handler: api.Handler(),
	}
	go func() {
		logger.Info("HTTP API listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down feed server")

	stopFeed()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	gs.GracefulStop()

	wg.Wait()
	if err := recorders.Close(); err != nil {
		logger.Error("closing recorders", "error", err)
	}
}

// runRecorder persists every applied update until ctx is cancelled, flushing
// the parquet buffer every flushEvery.
func runRecorder(ctx context.Context, model *live.LiveModel, rec store.Recorder, parquet *store.ParquetRecorder, flushEvery time.Duration, logger *slog.Logger) {
	id, events := model.Subscribe(1024)
	defer model.Unsubscribe(id)

	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := rec.Record(ctx, evt.Update, time.Now()); err != nil {
				logger.Warn("recording tick", "id", evt.Update.ID, "seq", evt.Seq, "error", err)
			}
		case <-ticker.C:
			if parquet == nil {
				continue
			}
			n := parquet.Buffered()
			if err := parquet.Flush(); err != nil {
				logger.Warn("flushing parquet ticks", "error", err)
				continue
			}
			logger.Debug("flushed parquet ticks", "count", n)
		}
	}
}
