package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewScheduler(func(context.Context) error { return nil }, time.UTC, arbor.NewLogger())
	err := s.Start("not a cron")
	assert.Error(t, err)
}

func TestStart_DefaultSchedule(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	s := NewScheduler(func(context.Context) error { return nil }, loc, arbor.NewLogger())
	require.NoError(t, s.Start(""))
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Next.In(loc)
	assert.Equal(t, 15, next.Hour())
	assert.Equal(t, 45, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())
}

func TestTrigger_SkipsOverlappingRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	s := NewScheduler(func(ctx context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}, time.UTC, arbor.NewLogger())

	done := make(chan bool)
	go func() { done <- s.trigger() }()
	<-started

	assert.False(t, s.trigger(), "second trigger should be skipped while the first runs")

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunNow(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("provider down")
	}, time.UTC, arbor.NewLogger())

	s.RunNow()
	s.Stop()

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, s.running.Load())
}
