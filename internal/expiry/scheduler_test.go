package expiry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	fired []string
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 16)}
}

func (r *recorder) fire(userID int64, version string) {
	r.mu.Lock()
	r.fired = append(r.fired, version)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) versions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.fired))
	copy(out, r.fired)
	return out
}

func waitFired(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestScheduleFiresWithCapturedVersion(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.fire)
	defer s.Close()

	s.Schedule(1, "v1", 10*time.Millisecond)
	waitFired(t, rec)

	assert.Equal(t, []string{"v1"}, rec.versions())
	assert.Equal(t, 0, s.Armed())
}

func TestRescheduleReplacesTimer(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.fire)
	defer s.Close()

	s.Schedule(1, "v1", time.Hour)
	s.Schedule(1, "v2", 10*time.Millisecond)
	require.Equal(t, 1, s.Armed(), "second schedule must replace, not add")

	waitFired(t, rec)
	assert.Equal(t, []string{"v2"}, rec.versions(), "only the replacing version may fire")
}

func TestCancelDisarms(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.fire)
	defer s.Close()

	s.Schedule(5, "v1", 20*time.Millisecond)
	s.Cancel(5)
	assert.Equal(t, 0, s.Armed())

	select {
	case <-rec.ch:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCloseStopsEverything(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.fire)

	s.Schedule(1, "a", time.Hour)
	s.Schedule(2, "b", time.Hour)
	s.Close()

	assert.Equal(t, 0, s.Armed())
	s.Schedule(3, "c", time.Millisecond)
	assert.Equal(t, 0, s.Armed(), "schedule after close is a no-op")
}

func TestIndependentUsers(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.fire)
	defer s.Close()

	s.Schedule(1, "u1", 10*time.Millisecond)
	s.Schedule(2, "u2", 10*time.Millisecond)
	waitFired(t, rec)
	waitFired(t, rec)

	assert.ElementsMatch(t, []string{"u1", "u2"}, rec.versions())
}
