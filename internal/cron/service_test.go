package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	held     bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func mustRegistry(t *testing.T, jobs ...Job) *Registry {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	require.NoError(t, err)
	return registry
}

func TestRunOnceRunsEveryJobAndCombinesFailures(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "failing", err: errors.New("boom")}
	last := &testJob{name: "last"}
	lock := &fakeLock{}
	reg := prometheus.NewRegistry()

	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, ok, failing, last),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	err = service.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: boom")
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, last.runs)
	assert.Equal(t, 1, lock.releases)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, job),
		Lock:     &fakeLock{held: true},
	})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	assert.Zero(t, job.runs)
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: testLogger()})
	assert.Error(t, err)
}

func TestRunStopsOnCancelAfterFirstCycle(t *testing.T) {
	job := &testJob{name: "job"}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, job),
		Lock:     lock,
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = service.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, job.runs, "a cancelled context stops before any job runs")
	assert.Equal(t, 1, lock.releases)
}
