package main

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/croftbw/watchmux/internal/api"
	"github.com/croftbw/watchmux/internal/clock"
	"github.com/croftbw/watchmux/internal/config"
	"github.com/croftbw/watchmux/internal/muxer"
	"github.com/croftbw/watchmux/internal/store"
	"github.com/croftbw/watchmux/internal/supervisor"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("watchmuxd: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"check_interval", cfg.CheckInterval,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// One registry, one clock domain, serialized by a process-wide mutex so
	// tasks in any goroutine can reach it through muxer.Default().
	var mu sync.Mutex
	clk := clock.NewWall()
	m, err := muxer.Configure(muxer.Hooks{
		Now:    clk.NowMS,
		Lock:   mu.Lock,
		Unlock: mu.Unlock,
	})
	if err != nil {
		log.Fatalf("failed to configure muxer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup := supervisor.New(m, db, logger, supervisor.Config{
		Interval: cfg.CheckInterval,
	})
	sup.Start(ctx)

	srv := api.NewServer(cfg.ListenAddr, db, m, sup, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}

	cancel()
	sup.Wait()
}
