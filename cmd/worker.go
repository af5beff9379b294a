package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/entitlement"
	entitlementPostgres "github.com/frahmantamala/leaveflow/internal/entitlement/postgres"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs outside the HTTP server",
	Long:  `Run background jobs such as the annual leave recompute on their own, for deployments that keep the API stateless`,
}

var entitlementWorkerCmd = &cobra.Command{
	Use:   "entitlements",
	Short: "Recompute annual leave allowances",
	Long:  `Recompute every employee's annual leave allowance on the configured schedule, or once with --once`,
	RunE:  runEntitlementWorker,
}

var (
	runOnce          bool
	scheduleOverride string
)

func runEntitlementWorker(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(config.Logging.Level, config.Logging.Format)

	db, err := initDB(config.Database, config.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	job := entitlement.NewJob(entitlementPostgres.NewEntitlementStore(db.SQLX), internal.SystemClock, log)

	if runOnce {
		return sweepOnce(ctx, job, log)
	}

	schedulerConfig := config.Scheduler
	schedulerConfig.EntitlementSchedule = getStringFlag(scheduleOverride, schedulerConfig.EntitlementSchedule)

	sched, err := startSchedule(schedulerConfig, job, log)
	if err != nil {
		return err
	}
	sched.Start()

	log.Info("entitlement worker is running. Press Ctrl+C to stop.", "schedule", schedulerConfig.EntitlementSchedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("received signal, shutting down entitlement worker", "signal", sig)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		log.Warn("shutdown timeout reached, forcing exit")
	}
	return nil
}

func sweepOnce(ctx context.Context, sweeper entitlement.Sweeper, log *slog.Logger) error {
	res, err := sweeper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("recompute failed: %w", err)
	}
	log.Info("recompute finished", "scanned", res.Scanned, "updated", res.Updated, "failed", res.Failed)
	return nil
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	entitlementWorkerCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single sweep and exit")
	entitlementWorkerCmd.Flags().StringVar(&scheduleOverride, "schedule", "", "Cron schedule (overrides config)")

	workerCmd.AddCommand(entitlementWorkerCmd)
}
