package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recorder tracks handled jobs and the peak concurrency per key.
type recorder struct {
	mu      sync.Mutex
	order   map[string][]string
	active  map[string]int
	maxSeen map[string]int
	delay   time.Duration
}

func newRecorder(delay time.Duration) *recorder {
	return &recorder{
		order:   make(map[string][]string),
		active:  make(map[string]int),
		maxSeen: make(map[string]int),
		delay:   delay,
	}
}

func (r *recorder) Handle(ctx context.Context, job Job) error {
	r.mu.Lock()
	r.active[job.Key]++
	if r.active[job.Key] > r.maxSeen[job.Key] {
		r.maxSeen[job.Key] = r.active[job.Key]
	}
	r.mu.Unlock()

	time.Sleep(r.delay)

	r.mu.Lock()
	r.active[job.Key]--
	r.order[job.Key] = append(r.order[job.Key], job.Path)
	r.mu.Unlock()
	return nil
}

func startDispatcher(t *testing.T, cfg DispatcherConfig, h JobHandler) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(cfg, h, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	return d
}

func TestNewDispatcher_InvalidConfig(t *testing.T) {
	_, err := NewDispatcher(DispatcherConfig{Workers: 0, QueueSize: 1}, HandlerFunc(func(context.Context, Job) error { return nil }), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewDispatcher(DefaultDispatcherConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDispatcher_SubmitBeforeStart(t *testing.T) {
	d, err := NewDispatcher(DefaultDispatcherConfig(), newRecorder(0), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, d.Submit(Job{Key: "Acme", Path: "a.csv"}), ErrNotRunning)
}

func TestDispatcher_SameKeyIsSerializedInOrder(t *testing.T) {
	rec := newRecorder(5 * time.Millisecond)
	d := startDispatcher(t, DispatcherConfig{Workers: 4, QueueSize: 50}, rec)

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Submit(Job{Key: "Acme", Path: fmt.Sprintf("acme-%d.csv", i)}))
		require.NoError(t, d.Submit(Job{Key: "Globex", Path: fmt.Sprintf("globex-%d.csv", i)}))
	}
	require.NoError(t, d.Stop(context.Background()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.maxSeen["Acme"])
	assert.Equal(t, 1, rec.maxSeen["Globex"])
	require.Len(t, rec.order["Acme"], 10)
	for i, p := range rec.order["Acme"] {
		assert.Equal(t, fmt.Sprintf("acme-%d.csv", i), p)
	}
}

func TestDispatcher_StopDrainsQueuedJobs(t *testing.T) {
	rec := newRecorder(2 * time.Millisecond)
	d := startDispatcher(t, DispatcherConfig{Workers: 1, QueueSize: 20}, rec)

	for i := 0; i < 20; i++ {
		require.NoError(t, d.Submit(Job{Key: "Acme", Path: fmt.Sprintf("%d.csv", i)}))
	}
	require.NoError(t, d.Stop(context.Background()))

	rec.mu.Lock()
	assert.Len(t, rec.order["Acme"], 20)
	rec.mu.Unlock()

	assert.False(t, d.IsRunning())
	assert.ErrorIs(t, d.Submit(Job{Key: "Acme"}), ErrNotRunning)
	assert.NoError(t, d.Stop(context.Background()), "second stop is a no-op")
}

func TestDispatcher_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	blocking := HandlerFunc(func(ctx context.Context, job Job) error {
		started <- struct{}{}
		<-release
		return nil
	})
	d := startDispatcher(t, DispatcherConfig{Workers: 1, QueueSize: 1}, blocking)

	require.NoError(t, d.Submit(Job{Key: "Acme", Path: "1.csv"}))
	<-started
	require.NoError(t, d.Submit(Job{Key: "Acme", Path: "2.csv"}))
	assert.ErrorIs(t, d.Submit(Job{Key: "Acme", Path: "3.csv"}), ErrQueueFull)
	assert.Equal(t, int64(1), d.InFlight())
	assert.Equal(t, 1, d.Pending())

	close(release)
	go func() {
		for range started {
		}
	}()
	require.NoError(t, d.Stop(context.Background()))
	close(started)
}

func TestDispatcher_StopWaitsForInFlightJobs(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	var events []string
	record := func(e string) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}

	d := startDispatcher(t, DispatcherConfig{Workers: 1, QueueSize: 2}, HandlerFunc(func(ctx context.Context, job Job) error {
		if job.Path == "slow.csv" {
			close(started)
			<-release
		}
		record("done " + job.Path)
		return nil
	}))
	require.NoError(t, d.Submit(Job{Key: "Acme", Path: "slow.csv"}))
	require.NoError(t, d.Submit(Job{Key: "Acme", Path: "queued.csv"}))
	<-started

	// a short deadline only triggers a warning
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	stopped := make(chan error, 1)
	go func() {
		err := d.Stop(ctx)
		record("closed")
		stopped <- err
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a job was still running")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int64(1), d.InFlight())

	close(release)
	require.NoError(t, <-stopped)
	assert.Equal(t, []string{"done slow.csv", "done queued.csv", "closed"}, events)
	assert.Zero(t, d.InFlight())
}

func TestDispatcher_HandlerErrorsAndPanicsDoNotKillWorker(t *testing.T) {
	var mu sync.Mutex
	var handled []string
	h := HandlerFunc(func(ctx context.Context, job Job) error {
		switch job.Path {
		case "err.csv":
			return errors.New("boom")
		case "panic.csv":
			panic("bad file")
		}
		mu.Lock()
		handled = append(handled, job.Path)
		mu.Unlock()
		return nil
	})
	d := startDispatcher(t, DispatcherConfig{Workers: 1, QueueSize: 10}, h)

	for _, p := range []string{"err.csv", "panic.csv", "ok.csv"} {
		require.NoError(t, d.Submit(Job{Key: "Acme", Path: p}))
	}
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, []string{"ok.csv"}, handled)
	assert.Equal(t, int64(2), d.failed.Load())
}

func TestDispatcher_StopDoesNotCancelJobContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var jobErr error
	d, err := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 1}, HandlerFunc(func(jobCtx context.Context, job Job) error {
		cancel()
		time.Sleep(5 * time.Millisecond)
		jobErr = jobCtx.Err()
		return nil
	}), nil)
	require.NoError(t, err)
	require.NoError(t, d.Start(ctx))
	require.NoError(t, d.Submit(Job{Key: "Acme"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.NoError(t, jobErr)
}

func TestShardFor(t *testing.T) {
	assert.Equal(t, 0, ShardFor("anything", 1))
	assert.Equal(t, ShardFor("Acme", 8), ShardFor("Acme", 8))
	for _, key := range []string{"Acme", "Globex", "Initech", ""} {
		s := ShardFor(key, 4)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 4)
	}
}
