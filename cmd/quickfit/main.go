package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"quickfit/internal/alarm"
	"quickfit/internal/api"
	"quickfit/internal/config"
	"quickfit/internal/fitsync"
	"quickfit/internal/notify"
	"quickfit/internal/store"
)

func main() {
	var (
		addr    = flag.String("addr", ":8080", "HTTP bind address")
		dbPath  = flag.String("db", "quickfit.db", "SQLite DB path")
		cfgPath = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", *dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	db.SetMaxOpenConns(1) // SQLite single writer

	if err := store.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}
	st := store.NewSQLiteStore(db)

	ctx, cancel := context.WithCancel(context.Background())

	syncSvc := fitsync.New(st, fitsync.LogUploader{}, cfg.SyncInterval.Std())
	if err := syncSvc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start session sync")
	}

	var engine *alarm.Engine
	timer := alarm.NewWallTimer(func() { engine.OnTimerFired() })
	engine = alarm.NewEngine(st, timer, notify.LogSink{}, syncSvc, cfg.SnoozeDuration.Std())
	go engine.Run(ctx)

	// Boot behaves like a delayed wake-up: reconcile whatever came due
	// while the process was down, then rearm from store state.
	engine.OnBoot()

	srv := &http.Server{Addr: *addr, Handler: api.NewServer(st, engine)}
	go func() {
		log.Info().Str("addr", *addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")
	cancel()
	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	_ = srv.Shutdown(ctxTimeout)
}
