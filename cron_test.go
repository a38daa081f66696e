package loom

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronSchedulerRunsJobsWhileRunning(t *testing.T) {
	var ticks atomic.Int32
	app := newTestApp(WithProviders(
		CronProvider("scheduler", CronJob{
			Spec: "@every 100ms",
			Job:  func() { ticks.Add(1) },
		}),
	))

	require.NoError(t, app.Init())
	assert.Zero(t, ticks.Load(), "jobs must not tick before ApplicationStart")

	require.NoError(t, app.Start())
	assert.Eventually(t, func() bool { return ticks.Load() > 0 },
		3*time.Second, 20*time.Millisecond)

	require.NoError(t, app.Stop())
	after := ticks.Load()
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "jobs must not tick after shutdown")
}

func TestCronProviderRejectsInvalidSpec(t *testing.T) {
	app := newTestApp(WithProviders(
		CronProvider("scheduler", CronJob{Spec: "not a spec", Job: func() {}}),
	))

	err := app.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron spec")
}

func TestCronSchedulerAddJob(t *testing.T) {
	s, err := NewCronScheduler(&testLogger{})
	require.NoError(t, err)

	require.NoError(t, s.AddJob("@hourly", func() {}))
	assert.Error(t, s.AddJob("nope", func() {}))
}
