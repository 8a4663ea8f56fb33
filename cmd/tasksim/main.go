// tasksim runs a simulated fleet of cooperative tasks against the shared
// watchdog registry: each task registers a node and feeds it on its own
// cadence, one task stalls partway through, and the supervisor reports
// which id went silent. Usage: go run ./cmd/tasksim
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/croftbw/watchmux/internal/clock"
	"github.com/croftbw/watchmux/internal/config"
	"github.com/croftbw/watchmux/internal/muxer"
	"github.com/croftbw/watchmux/internal/supervisor"
	"github.com/croftbw/watchmux/internal/watchdog"
)

const (
	numTasks     = 4
	feedInterval = 50 * time.Millisecond
	taskTimeout  = 200 // ms
	stallAfter   = 1 * time.Second
	runFor       = 3 * time.Second
)

func main() {
	logger := config.NewLogger(os.Stdout, config.Load().LogLevel)

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

	sup := supervisor.New(m, nil, logger, supervisor.Config{
		Interval: 25 * time.Millisecond,
		FeedFunc: func() {
			// Stands in for resetting the hardware watchdog.
			logger.Debug("hardware watchdog fed")
		},
		AlarmFunc: func(ids []uint32) {
			logger.Error("tasks went silent", "node_ids", ids)
		},
	})
	sup.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			runTask(ctx, logger, id)
		}(uint32(i + 1))
	}

	time.Sleep(runFor)
	cancel()
	wg.Wait()
	sup.Wait()

	if ids := muxer.Default().ExpiredIDs(); len(ids) > 0 {
		logger.Info("simulation finished", "expired_nodes", ids)
	} else {
		logger.Info("simulation finished", "expired_nodes", "none")
	}
}

// runTask registers a node through the process-wide muxer and feeds it until
// the context ends. Task 2 stops feeding after stallAfter to trip the
// watchdog; it stays registered, which is exactly the failure the registry
// is meant to catch.
func runTask(ctx context.Context, logger *slog.Logger, id uint32) {
	m := muxer.Default()

	var node watchdog.Node
	m.AssignID(&node, id)
	m.Add(&node, taskTimeout)
	defer m.Remove(&node)

	logger.Info("task registered", "node_id", id)

	start := time.Now()
	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if id == 2 && time.Since(start) > stallAfter {
				continue // stalled: stop feeding but stay registered
			}
			m.Feed(&node)
		}
	}
}
