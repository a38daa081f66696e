package loom

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// CronJob pairs a cron spec with the function to run on that schedule.
type CronJob struct {
	Spec string
	Job  func()
}

// CronScheduler wraps a cron runner as a lifecycle-aware provider instance.
// Jobs start ticking at ApplicationStart and the runner drains during
// ApplicationShutdown, waiting for in-flight jobs up to the shutdown
// deadline.
type CronScheduler struct {
	runner *cron.Cron
	logger Logger
}

// NewCronScheduler creates a scheduler with the given jobs registered.
// Invalid specs surface here, before the scheduler joins the container.
func NewCronScheduler(logger Logger, jobs ...CronJob) (*CronScheduler, error) {
	runner := cron.New()
	for _, j := range jobs {
		if _, err := runner.AddFunc(j.Spec, j.Job); err != nil {
			return nil, fmt.Errorf("invalid cron spec %q: %w", j.Spec, err)
		}
	}
	return &CronScheduler{runner: runner, logger: logger}, nil
}

// AddJob registers an additional job. Safe to call before or after OnStart.
func (s *CronScheduler) AddJob(spec string, job func()) error {
	if _, err := s.runner.AddFunc(spec, job); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

func (s *CronScheduler) OnStart(ctx context.Context) error {
	s.runner.Start()
	s.logger.Info("Cron scheduler started", "entries", len(s.runner.Entries()))
	return nil
}

func (s *CronScheduler) OnShutdown(ctx context.Context) error {
	stopCtx := s.runner.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron scheduler drain interrupted: %w", ctx.Err())
	}
}

// CronProvider declares a scheduler provider with start and shutdown hooks
// wired, running the given jobs while the application is in Running.
func CronProvider(name string, jobs ...CronJob) ProviderDescriptor {
	return ProviderDescriptor{
		Name: name,
		Factory: func(app *Application, deps map[string]any) (any, error) {
			return NewCronScheduler(app.Logger(), jobs...)
		},
		Hooks: HookStart | HookShutdown,
	}
}
