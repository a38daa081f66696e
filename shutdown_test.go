package loom

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownCompletesWithinTimeout(t *testing.T) {
	rec := &hookRecorder{}
	app := newTestApp()
	o := buildOrchestrator(t, app, scenarioRoot(rec))

	ctx := context.Background()
	require.NoError(t, o.initPhases(ctx))
	require.NoError(t, o.startPhase(ctx))

	coordinator := newShutdownCoordinator(time.Second, app.Logger())
	require.NoError(t, coordinator.shutdown(o))
	assert.Equal(t, PhaseStopped, o.currentPhase())
}

func TestShutdownTimeoutAbandonsPendingHooks(t *testing.T) {
	rec := &hookRecorder{}
	app := newTestApp()

	root := &ModuleDescriptor{Name: "root", Providers: []ProviderDescriptor{
		svcProvider("Logger", rec),
		customProvider("Slow", &testService{
			name:          "Slow",
			rec:           rec,
			shutdownDelay: 30 * time.Second,
		}, "Logger"),
	}}
	o := buildOrchestrator(t, app, root)

	ctx := context.Background()
	require.NoError(t, o.initPhases(ctx))
	require.NoError(t, o.startPhase(ctx))

	coordinator := newShutdownCoordinator(50*time.Millisecond, app.Logger())
	start := time.Now()
	err := coordinator.shutdown(o)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShutdownTimeout)
	// bounded: the coordinator returns near the deadline, not after the
	// slow hook's full delay
	assert.Less(t, elapsed, 2*time.Second)

	var timeoutErr *ShutdownTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.NotEmpty(t, timeoutErr.Pending)
	assert.Equal(t, ExitCodeShutdown, ExitCode(err))
}

func TestShutdownTimeoutPendingNamesAbandonedHooks(t *testing.T) {
	rec := &hookRecorder{}
	app := newTestApp()

	root := &ModuleDescriptor{Name: "root", Providers: []ProviderDescriptor{
		customProvider("Fast", &testService{name: "Fast", rec: rec}),
		customProvider("Stuck", &testService{
			name:         "Stuck",
			rec:          rec,
			destroyDelay: 5 * time.Second,
			hangDestroy:  true,
		}, "Fast"),
	}}
	o := buildOrchestrator(t, app, root)

	ctx := context.Background()
	require.NoError(t, o.initPhases(ctx))
	require.NoError(t, o.startPhase(ctx))

	coordinator := newShutdownCoordinator(100*time.Millisecond, app.Logger())
	err := coordinator.shutdown(o)
	require.Error(t, err)

	var timeoutErr *ShutdownTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	// Stuck's destroy never completed; Fast's destroy never got its turn
	assert.Contains(t, timeoutErr.Pending, "Stuck")
	assert.Contains(t, timeoutErr.Pending, "Fast")
}

func TestShutdownCoordinatorDefaultsTimeout(t *testing.T) {
	c := newShutdownCoordinator(0, &testLogger{})
	assert.Equal(t, DefaultShutdownTimeout, c.timeout)
}
