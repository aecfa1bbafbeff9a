package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"finanzas/internal/interfaces/scheduler"
	"finanzas/internal/shared/config"
	"finanzas/internal/shared/logger"
	"finanzas/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tel *telemetry.Provider
	if cfg.Telemetry.Enabled {
		var err error
		tel, err = telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  os.Getenv("APP_ENV"),
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		}, log)
		if err != nil {
			return err
		}
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return err
	}
	defer deps.Close()

	bg := Background{Telemetry: tel, Listener: deps.BalanceListener}
	deps.BalanceListener.Start(ctx)

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.NewScheduler(scheduler.Config{
			ScheduleTimes: cfg.Scheduler.ScheduleTimes,
			JobProvider:   scheduler.BalanceRepairJobs(deps.Ledger),
			IntervalJob:   scheduler.NewRecurringRulesJob(deps.Ledger),
			Interval:      cfg.Scheduler.RecurringInterval,
			WorkerCount:   cfg.Scheduler.WorkerCount,
			JobDelay:      cfg.Scheduler.JobDelay,
			QueueSize:     cfg.Scheduler.QueueSize,
			RunOnStartup:  cfg.Scheduler.RunOnStartup,
		}, log)
		if err != nil {
			return err
		}
		sched.Start()
		bg.Scheduler = sched
	} else {
		log.Info().Msg("scheduler is disabled")
	}

	handler := SetupRoutes(deps, cfg, tel, log)
	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	<-ctx.Done()
	GracefulShutdown(srv, redirectSrv, bg, 30*time.Second, log)
	return nil
}
