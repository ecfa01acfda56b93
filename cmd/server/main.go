package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardtable/cardtable/pkg/api"
	"github.com/cardtable/cardtable/pkg/config"
	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/repositories"
	"github.com/cardtable/cardtable/pkg/servers"
	"github.com/cardtable/cardtable/pkg/sessions"
	"github.com/cardtable/cardtable/pkg/version"
	"github.com/cardtable/cardtable/pkg/workers"
)

const (
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		panic(fmt.Sprintf("Failed to parse configuration: %v", err))
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repository, err := newRepository(ctx, cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(ctx)

	resultsChan := make(chan repositories.MatchResult, cfg.ResultsBuffer)

	resultsWorker := workers.NewResultsWorker(workers.NewResultsWorkerOptions{
		Repository: repository,
		Channel:    resultsChan,
	})
	go resultsWorker.Start(ctx)

	manager := sessions.NewManager(sessions.NewManagerOptions{
		Results: resultsChan,
	})
	lobby := sessions.NewLobby(sessions.NewLobbyOptions{
		Manager: manager,
	})

	gameServer := servers.NewWebSocketServer(servers.NewWebSocketServerOptions{
		Port:  cfg.GamePort,
		Lobby: lobby,
	})
	go func() {
		if err := gameServer.Start(); err != nil {
			log.Error("Game server error: %v", err)
		}
	}()

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:       cfg.APIPort,
		Manager:    manager,
		Repository: repository,
	})
	go apiServer.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	manager.CloseAll()
	if err := gameServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop game server: %v", err)
	}
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
	cancel()
}

func newRepository(ctx context.Context, cfg *config.Config) (repositories.Repository, error) {
	switch {
	case cfg.DatabaseURL != "":
		log.Info("Using Postgres repository")
		return repositories.NewPostgresRepository(ctx, cfg.DatabaseURL)
	case cfg.SQLitePath != "":
		log.Info("Using SQLite repository at %s", cfg.SQLitePath)
		return repositories.NewSQLiteRepository(ctx, cfg.SQLitePath)
	default:
		log.Info("Using in-memory repository")
		return repositories.NewInMemoryRepository(), nil
	}
}
