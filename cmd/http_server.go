package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/entitlement"
	"github.com/frahmantamala/leaveflow/internal/scheduler"
	"github.com/frahmantamala/leaveflow/internal/transport/rest"
	"github.com/frahmantamala/leaveflow/internal/transport/swagger"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP API together with the in-process annual leave recompute schedule`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *database
	App       *application
	Scheduler *scheduler.Scheduler
	Router    *chi.Mux
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	if deps.Scheduler != nil {
		deps.Scheduler.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	if deps.Scheduler != nil {
		if err := deps.Scheduler.Stop(ctx); err != nil {
			deps.Logger.Error("Scheduler shutdown error", "error", err)
		}
	}
	deps.App.Close(ctx)
	deps.DB.Close()

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(config.Logging.Level, config.Logging.Format)

	db, err := initDB(config.Database, config.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app, err := buildApplication(config, db, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	var sched *scheduler.Scheduler
	if config.Scheduler.Enabled {
		sched, err = startSchedule(config.Scheduler, app.Job, log)
		if err != nil {
			app.Close(context.Background())
			db.Close()
			return nil, err
		}
		app.Handlers.Health.WithScheduler(sched, entitlement.JobName)
	}

	if path := config.Server.OpenAPIPath; path != "" {
		doc, err := swagger.LoadSpec(context.Background(), path)
		if err != nil {
			log.Warn("OpenAPI document not served", "path", path, "error", err)
		} else {
			app.Handlers.OpenAPI = doc
		}
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, app.Handlers, config.Server.Origins(), log)

	return &Dependencies{
		Config:    config,
		DB:        db,
		App:       app,
		Scheduler: sched,
		Router:    router,
		Logger:    log,
	}, nil
}

func startSchedule(cfg internal.SchedulerConfig, job *entitlement.Job, log *slog.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log, scheduler.WithRunTimeout(time.Hour))
	if err := sched.Register(cfg.EntitlementSchedule, job); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}

	if cfg.RunOnStart {
		go func() {
			if err := sched.Trigger(context.Background(), job); err != nil {
				log.Error("startup recompute failed", "error", err)
			}
		}()
	}
	return sched, nil
}
