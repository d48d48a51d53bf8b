package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tokenscope/internal/config"
	"tokenscope/internal/dashboard"
	"tokenscope/internal/live"
	"tokenscope/internal/token"
	"tokenscope/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	addr := cfg.Dashboard.RemoteAddr
	if addr == "" {
		addr = fmt.Sprintf("localhost:%d", cfg.Server.GRPCPort)
	}

	logger := util.NewLogger(cfg.Logging.Level, "text", os.Stderr)
	client := live.NewClient(addr, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	board := dashboard.NewBoard(nil)
	board.FinishLoading()

	err = client.Sync(ctx, func(rs []token.Record) {
		board.Replace(rs)
		printBoard(board)
	}, func(u token.Update) {
		prev, ok := board.Record(u.ID)
		if !board.ApplyUpdate(u) {
			return
		}
		cur, _ := board.Record(u.ID)
		printUpdate(prev, cur, ok)
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("sync error", "error", err)
		os.Exit(1)
	}
	fmt.Println("\nshutdown")
}

func printBoard(b *dashboard.Board) {
	fmt.Printf("%-14s %-6s %-15s %12s %14s %14s %10s\n", "TOKEN", "SYM", "STATUS", "PRICE", "MARKET CAP", "VOLUME", "CHANGE")
	for _, r := range b.Derive() {
		fmt.Printf("%-14s %-6s %-15s %12s %14s %14s %10s\n",
			r.Name, r.Symbol, r.Category,
			dashboard.FormatCurrency(r.Price),
			dashboard.FormatCurrency(r.MarketCap),
			dashboard.FormatCurrency(r.Volume24h),
			dashboard.FormatChange(r.Change24h),
		)
	}
	t := b.Totals()
	fmt.Printf("%d tokens, market cap %s, volume %s\n\n", t.Count, dashboard.FormatCurrency(t.MarketCap), dashboard.FormatCurrency(t.Volume24h))
}

func printUpdate(prev, cur token.Record, hadPrev bool) {
	mark := " "
	if hadPrev {
		switch dashboard.Compare(prev.Price, cur.Price) {
		case dashboard.MoveUp:
			mark = "▲"
		case dashboard.MoveDown:
			mark = "▼"
		}
	}
	fmt.Printf("%s %-14s %12s %10s  %s\n",
		mark, cur.Name,
		dashboard.FormatCurrency(cur.Price),
		dashboard.FormatChange(cur.Change24h),
		dashboard.Sparkline(cur.History),
	)
}
