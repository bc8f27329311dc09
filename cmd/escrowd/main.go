package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrow-daemon/config"
	"github.com/escrow-network/escrow-daemon/internal/core/application"
	"github.com/escrow-network/escrow-daemon/internal/core/ports"
	platforminmemory "github.com/escrow-network/escrow-daemon/internal/infrastructure/platform/inmemory"
	dbbadger "github.com/escrow-network/escrow-daemon/internal/infrastructure/storage/db/badger"
	"github.com/escrow-network/escrow-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/escrow-network/escrow-daemon/pkg/stats"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	var repoManager ports.RepoManager
	if config.GetBool(config.InMemoryDbKey) {
		repoManager = inmemory.NewRepoManager()
		log.Warn("running with volatile in-memory store, state will not survive restarts")
	} else {
		manager, err := dbbadger.NewRepoManager(config.GetDbDir(), nil)
		if err != nil {
			log.WithError(err).Panic("error while opening session store")
		}
		repoManager = manager
	}
	defer repoManager.Close()

	// The only adapter shipped in-tree is the sandbox one; a real
	// chat-platform adapter plugs in through ports.PlatformClient.
	platform := platforminmemory.NewClient()

	svc, err := application.NewService(
		repoManager,
		platform,
		config.GetDuration(config.SessionExpiryKey),
		config.GetDuration(config.SweepIntervalKey),
		config.GetInt(config.SendRateKey),
	)
	if err != nil {
		log.WithError(err).Panic("error while starting orchestrator")
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if interval := config.GetDuration(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(ctx, interval, config.GetDatadir())
	}

	log.Info("escrow daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")
}
