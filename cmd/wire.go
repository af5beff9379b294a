package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/auth"
	authPostgres "github.com/frahmantamala/leaveflow/internal/auth/postgres"
	"github.com/frahmantamala/leaveflow/internal/core/events"
	"github.com/frahmantamala/leaveflow/internal/department"
	departmentPostgres "github.com/frahmantamala/leaveflow/internal/department/postgres"
	"github.com/frahmantamala/leaveflow/internal/employee"
	employeePostgres "github.com/frahmantamala/leaveflow/internal/employee/postgres"
	"github.com/frahmantamala/leaveflow/internal/entitlement"
	entitlementPostgres "github.com/frahmantamala/leaveflow/internal/entitlement/postgres"
	"github.com/frahmantamala/leaveflow/internal/leave"
	leavePostgres "github.com/frahmantamala/leaveflow/internal/leave/postgres"
	"github.com/frahmantamala/leaveflow/internal/notification"
	"github.com/frahmantamala/leaveflow/internal/stats"
	statsPostgres "github.com/frahmantamala/leaveflow/internal/stats/postgres"
	"github.com/frahmantamala/leaveflow/internal/transport"
	"github.com/frahmantamala/leaveflow/internal/transport/rest"
)

// application is the fully wired object graph shared by the server and the CLI commands.
type application struct {
	Bus        *events.EventBus
	Dispatcher *notification.Dispatcher
	Notifier   *notification.Notifier
	Job        *entitlement.Job
	Handlers   rest.Handlers
}

func buildApplication(cfg *internal.Config, db *database, logger *slog.Logger) (*application, error) {
	sender, err := notification.NewSender(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail sender: %w", err)
	}

	dispatcher := notification.NewDispatcher(sender, notification.DispatcherConfig{
		Workers:     cfg.Mail.Workers,
		QueueSize:   cfg.Mail.QueueSize,
		SendTimeout: cfg.Mail.Timeout,
	}, logger)

	notifier, err := notification.NewNotifier(sender, dispatcher, cfg.App.FrontendURL, logger)
	if err != nil {
		dispatcher.Shutdown()
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	bus := events.NewEventBus(logger)
	notifier.RegisterEventHandlers(bus)

	departmentRepo := departmentPostgres.NewDepartmentRepository(db.Gorm)
	employeeRepo := employeePostgres.NewEmployeeRepository(db.Gorm)
	resetTokenRepo := authPostgres.NewResetTokenRepository(db.Gorm)
	leaveRepo := leavePostgres.NewLeaveRepository(db.Gorm)
	entitlementStore := entitlementPostgres.NewEntitlementStore(db.SQLX)
	statsStore := statsPostgres.NewStatsStore(db.SQLX)

	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
	issuer := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration, internal.SystemClock)

	departmentService := department.NewService(departmentRepo, logger)
	employeeService := employee.NewService(employeeRepo, departmentRepo, hasher, bus, internal.SystemClock, logger)
	authService := auth.NewService(employeeService, resetTokenRepo, hasher, issuer, notifier, auth.Options{
		ResetTokenTTL: cfg.Security.ResetTokenDuration,
		Production:    cfg.App.IsProduction(),
	}, internal.SystemClock, logger)
	leaveService := leave.NewService(leaveRepo, employeeService, bus, internal.SystemClock, logger)
	statsService := stats.NewService(statsStore, logger)
	job := entitlement.NewJob(entitlementStore, internal.SystemClock, logger)

	base := transport.NewBaseHandler(logger)

	return &application{
		Bus:        bus,
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Job:        job,
		Handlers: rest.Handlers{
			Health:        rest.NewHealthHandler(db.SQLX.DB),
			Auth:          auth.NewHandler(base, authService),
			Authorization: auth.NewAuthorization(base),
			Employee:      employee.NewHandler(base, employeeService),
			Department:    department.NewHandler(base, departmentService),
			Leave:         leave.NewHandler(base, leaveService),
			Stats:         stats.NewHandler(base, statsService),
			Entitlement:   entitlement.NewHandler(base, job),
		},
	}, nil
}

// Close drains in-flight event handlers, then the mail queue.
func (a *application) Close(ctx context.Context) {
	if err := a.Bus.Wait(ctx); err != nil {
		slog.Warn("event handlers still running at shutdown", "error", err)
	}
	a.Dispatcher.Shutdown()
}
