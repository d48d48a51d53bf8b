package main

import (
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tokenscope/internal/config"
	"tokenscope/internal/live"
	"tokenscope/internal/mockfeed"
	"tokenscope/internal/token"
	"tokenscope/internal/tui"
	"tokenscope/internal/util"
)

// reconnectAttempts bounds how often the dashboard redials a feed server.
const reconnectAttempts = 20

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logPath := fmt.Sprintf("/tmp/tokenscope-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)
	util.SetDefault(logger)

	seed := token.Seed()

	var feed tui.Feed
	title := "TokenScope"
	if addr := cfg.Dashboard.RemoteAddr; addr != "" {
		feed = tui.RemoteFeed(live.NewClient(addr, logger), reconnectAttempts, logger)
		title = "TokenScope @ " + addr
		logger.Info("mirroring feed server", "addr", addr)
	} else {
		gen := mockfeed.New(seed, mockfeed.WithInterval(cfg.Feed.Interval), mockfeed.WithLogger(logger))
		feed = tui.LocalFeed(gen)
		logger.Info("running local mock feed", "interval", gen.Interval())
	}

	m := tui.New(tui.Options{
		Seed:          seed,
		Feed:          feed,
		LoadingDelay:  cfg.Feed.LoadingDelay,
		FlashDuration: cfg.Dashboard.FlashDuration,
		SkeletonRows:  cfg.Dashboard.SkeletonRows,
		Title:         title,
		Logger:        logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Shutdown()
	} else {
		m.Shutdown()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
