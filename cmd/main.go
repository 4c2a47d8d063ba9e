package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/saeidalz13/battleship-engine/api"
	"github.com/saeidalz13/battleship-engine/db"
	"github.com/saeidalz13/battleship-engine/db/sqlc"
	"github.com/saeidalz13/battleship-engine/internal/config"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal("invalid log level", "level", cfg.LogLevel, "err", err)
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	policy, err := mb.ParseRollbackPolicy(cfg.RollbackPolicy)
	if err != nil {
		log.Fatal("invalid rollback policy", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store     mb.MatchStore
		memStore  *mb.MemoryMatchStore
		analytics *sqlc.AnalyticsManager
	)
	if cfg.DatabaseURL != "" {
		conn := db.MustConnectToDb(cfg.DatabaseURL, cfg.MigrationDir)
		defer conn.Close()

		dbManager := sqlc.NewDbManager(sqlc.New(conn))
		store = db.NewPostgresMatchStore(dbManager.Queries)
		analytics = dbManager.Analytics
		log.Info("using postgres match store")
	} else {
		memStore = mb.NewMemoryMatchStore()
		store = memStore
		log.Info("using in-memory match store")
	}

	opts := []mb.Option{mb.WithRollbackPolicy(policy)}
	if cfg.RandomSeed != 0 {
		opts = append(opts, mb.WithSeed(cfg.RandomSeed))
	}
	gameManager := mb.NewMatchManager(store, opts...)
	if memStore != nil {
		go memStore.CleanupPeriodically(ctx, cfg.CleanupInterval, cfg.MatchMaxAge, gameManager.ForgetMatch)
	}

	sessionManager := mc.NewBattleshipSessionManager()
	go sessionManager.CleanupPeriodically(cfg.CleanupInterval, cfg.MatchMaxAge)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", api.NewRequestProcessor(sessionManager, gameManager, analytics))

	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("listening", "port", cfg.Port, "stage", cfg.Stage, "rollback", cfg.RollbackPolicy)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", "err", err)
	}
}
