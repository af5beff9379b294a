// Package scheduler runs named tasks on cron-style schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a unit of recurring work. Run must be safe to call directly, outside any schedule.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

type Option func(*Scheduler)

// WithRunTimeout bounds each task run; zero means no bound.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func New(logger *slog.Logger, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		logger:  logger,
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return s
}

// Register schedules task on spec, a standard five-field cron expression or a
// descriptor such as "@daily" or "@every 1h".
func (s *Scheduler) Register(spec string, task Task) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, task.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[task.Name()]; exists {
		return fmt.Errorf("task %s already registered", task.Name())
	}

	id := s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.execute(task)
	}))
	s.entries[task.Name()] = id

	s.logger.Info("task scheduled", "task", task.Name(), "schedule", spec, "next_run", schedule.Next(time.Now().UTC()))
	return nil
}

// Trigger runs a registered task immediately on the caller's goroutine.
func (s *Scheduler) Trigger(ctx context.Context, task Task) error {
	return s.run(ctx, task)
}

// NextRun reports when the named task fires next.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "tasks", len(s.entries))
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out, abandoning running tasks")
		return ctx.Err()
	}
}

func (s *Scheduler) execute(task Task) {
	if err := s.run(s.ctx, task); err != nil {
		s.logger.Error("scheduled task failed", "task", task.Name(), "error", err)
	}
}

func (s *Scheduler) run(ctx context.Context, task Task) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("task started", "task", task.Name())
	err := task.Run(ctx)
	s.logger.Info("task finished", "task", task.Name(), "duration_ms", time.Since(start).Milliseconds(), "failed", err != nil)
	return err
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
