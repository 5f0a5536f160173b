package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
	"github.com/vidaclinic/clinic-agenda/internal/config"
	"github.com/vidaclinic/clinic-agenda/internal/db"
)

// The no-show worker is the only thing that flips a missed visit to no_show:
// the engine never does it implicitly on a read path. It reloads the
// snapshot each run so a long-lived worker sees bookings made by the
// api-server after worker startup.
func main() {
	cfg, err := config.Load()
	if err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("config load error")
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "noshow-worker").Logger()
	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Dur("grace", cfg.NoShowGrace).
		Msg("noshow-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	persister := agenda.NewPgPersister(pgPool)

	// Run once at startup
	runOnce(rootCtx, persister, cfg, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping noshow-worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, persister, cfg, log)
		}
	}
}

func runOnce(ctx context.Context, persister *agenda.PgPersister, cfg config.Config, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()

	snap, err := persister.Load(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("load snapshot error")
		return
	}

	store := agenda.NewStore(agenda.StoreOptions{
		StartHour:      cfg.StartHour,
		EndHour:        cfg.EndHour,
		StepMinutes:    cfg.SlotStepMin,
		PreventOverlap: cfg.PreventOverlap,
	})
	store.Restore(snap)

	svc := agenda.NewService(store, persister, nil, cfg, log)
	marked, err := svc.SweepNoShows(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("no-show sweep error")
		return
	}

	log.Info().
		Int("marked", marked).
		Dur("took", time.Since(start)).
		Msg("no-show sweep complete")
}
