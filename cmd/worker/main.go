package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tillpoint/internal/infrastructure/config"
	"tillpoint/internal/infrastructure/database"
	"tillpoint/internal/infrastructure/scheduler"
	httpRouter "tillpoint/internal/interfaces/http"
	"tillpoint/internal/shared/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger, false); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger().Named("worker")
	log.Infow("starting maintenance worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	// The container gives the jobs the same repositories, feed and
	// subscription cache the server uses, so expiries reach every instance.
	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Shutdown()

	sched, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := sched.RegisterReconcileBranches(container.ReconcileBranchesJob(), cfg.Worker.ReconcileInterval); err != nil {
		return fmt.Errorf("failed to register branch reconcile: %w", err)
	}
	if err := sched.RegisterExpireTrials(container.ExpireTrialsJob(), cfg.Worker.TrialExpiryInterval); err != nil {
		return fmt.Errorf("failed to register trial expiry: %w", err)
	}

	sched.Start()
	log.Infow("maintenance worker started",
		"reconcile_interval", cfg.Worker.ReconcileInterval,
		"trial_expiry_interval", cfg.Worker.TrialExpiryInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("received signal, shutting down", "signal", sig.String())

	if err := sched.Stop(); err != nil {
		log.Errorw("scheduler did not stop cleanly", "error", err)
	}
	log.Infow("maintenance worker stopped")
	return nil
}
