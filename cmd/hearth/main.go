package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/hearth/internal/cache"
	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/logging"
	"github.com/dukerupert/hearth/internal/realtime"
	"github.com/dukerupert/hearth/internal/remote"
	"github.com/dukerupert/hearth/internal/syncer"
)

const defaultSyncInterval = 5 * time.Minute

func main() {
	logger := logging.Setup(os.Getenv("HEARTH_LOG_LEVEL"))

	serverURL := os.Getenv("HEARTH_SERVER_URL")
	if serverURL == "" {
		log.Fatal("HEARTH_SERVER_URL is required")
	}

	dbPath := os.Getenv("HEARTH_DB_PATH")
	if dbPath == "" {
		dbPath = "hearth.db"
	}

	interval := defaultSyncInterval
	if raw := os.Getenv("HEARTH_SYNC_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid HEARTH_SYNC_INTERVAL: %v", err)
		}
		interval = parsed
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	client := remote.NewClient(serverURL, os.Getenv("HEARTH_AUTH_TOKEN"), logger)
	local := cache.New(db, logger)

	manager := realtime.New(client, local, logger)
	manager.Subscribe()

	coord := syncer.New(client.Auth(), syncer.PullFunc(func(ctx context.Context) {
		local.PullAll(ctx, client)
	}), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial pass, then the periodic timer. SIGHUP forces an immediate
	// pass, the CLI analog of pull-to-refresh.
	go coord.Sync(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := make(chan os.Signal, 1)
	signal.Notify(refresh, syscall.SIGHUP)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("hearth sync running", "server", serverURL, "db", dbPath, "interval", interval)

	for {
		select {
		case <-ticker.C:
			go coord.Sync(ctx)
		case <-refresh:
			logger.Info("manual sync requested")
			go coord.Sync(ctx)
		case <-quit:
			logger.Info("shutting down")
			// Drop subscriptions before the client goes away so none
			// leak against a stale connection.
			manager.Unsubscribe()
			cancel()
			return
		}
	}
}
