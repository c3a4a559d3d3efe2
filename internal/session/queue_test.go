package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/session"
)

type recorder struct {
	mu    sync.Mutex
	saved []int
}

func (r *recorder) save(_ context.Context, v int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, v)
	return nil
}

func (r *recorder) values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.saved...)
}

func TestSaveQueueCoalescesRapidEdits(t *testing.T) {
	rec := &recorder{}
	q := session.NewSaveQueue(rec.save, 20*time.Millisecond, nil)

	for v := 1; v <= 3; v++ {
		q.Submit(v)
	}
	require.Eventually(t, func() bool { return q.Written() == 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{3}, rec.values())
}

func TestSaveQueueFlushWritesImmediately(t *testing.T) {
	rec := &recorder{}
	q := session.NewSaveQueue(rec.save, time.Hour, nil)

	require.NoError(t, q.Flush(context.Background()))
	require.Empty(t, rec.values())

	ver := q.Submit(42)
	require.NoError(t, q.Flush(context.Background()))
	require.Equal(t, ver, q.Written())
	require.Equal(t, []int{42}, rec.values())

	require.NoError(t, q.Flush(context.Background()))
	require.Equal(t, []int{42}, rec.values())
}

func TestSaveQueueSkipsSupersededVersions(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		saved []string
	)
	save := func(_ context.Context, v string) error {
		if v == "a" {
			close(started)
			<-release
		}
		mu.Lock()
		saved = append(saved, v)
		mu.Unlock()
		return nil
	}
	q := session.NewSaveQueue(save, time.Hour, nil)

	q.Submit("a")
	done := make(chan error, 1)
	go func() { done <- q.Flush(context.Background()) }()
	<-started

	q.Submit("b")
	last := q.Submit("c")
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, q.Flush(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"a", "c"}, saved)
	require.Equal(t, last, q.Written())
}

func TestSaveQueueKeepsPendingAfterFailure(t *testing.T) {
	fail := true
	var saved []int
	q := session.NewSaveQueue(func(_ context.Context, v int) error {
		if fail {
			return errors.New("database is locked")
		}
		saved = append(saved, v)
		return nil
	}, time.Hour, nil)

	q.Submit(7)
	require.Error(t, q.Flush(context.Background()))
	require.Error(t, q.Err())
	require.Zero(t, q.Written())

	fail = false
	require.NoError(t, q.Close(context.Background()))
	require.Equal(t, []int{7}, saved)
	require.NoError(t, q.Err())
}

func TestSaveQueueRetriesFailedTimedWriteOnce(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
		saved    []int
	)
	q := session.NewSaveQueue(func(_ context.Context, v int) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("database is locked")
		}
		saved = append(saved, v)
		return nil
	}, 10*time.Millisecond, nil)

	ver := q.Submit(9)
	require.Eventually(t, func() bool { return q.Written() == ver }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, attempts)
	require.Equal(t, []int{9}, saved)
}

func TestSaveQueueGivesUpAfterOneRetry(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	q := session.NewSaveQueue(func(context.Context, int) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("read-only file system")
	}, 5*time.Millisecond, nil)

	q.Submit(1)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, time.Second, 2*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	require.Equal(t, 2, attempts)
	mu.Unlock()
	require.Zero(t, q.Written())
	require.Error(t, q.Err())
}
