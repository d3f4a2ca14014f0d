package weather

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Begin_Success(t *testing.T) {
	store := &listStore{}
	svc, _ := newTestService(&fakeGeo{candidates: springfields()}, &fakeForecast{forecast: sampleForecast()}, store, Options{})

	a := svc.Begin("Springfield", time.Second)
	assert.Equal(t, StateLoading, a.State)
	assert.NotEmpty(t, a.ID)

	require.Eventually(t, func() bool {
		got, err := svc.Attempt(a.ID)
		return err == nil && got.State == StateSuccess
	}, time.Second, 5*time.Millisecond)

	got, err := svc.Attempt(a.ID)
	require.NoError(t, err)
	assert.Equal(t, store.List()[0].ID, got.RecordID)
	assert.NotNil(t, got.FinishedAt)
	assert.Empty(t, got.Message)
}

func TestService_Begin_Error(t *testing.T) {
	svc, _ := newTestService(&fakeGeo{}, &fakeForecast{forecast: sampleForecast()}, &listStore{}, Options{})

	a := svc.Begin("Atlantis", 0)

	require.Eventually(t, func() bool {
		got, err := svc.Attempt(a.ID)
		return err == nil && got.State == StateError
	}, time.Second, 5*time.Millisecond)

	got, _ := svc.Attempt(a.ID)
	assert.Equal(t, "Location not found", got.Message)
	assert.Empty(t, got.RecordID)
}

func TestService_Begin_ConcurrentAttempts(t *testing.T) {
	fc := &fakeForecast{forecast: sampleForecast(), block: make(chan struct{})}
	store := &listStore{}
	svc, _ := newTestService(&fakeGeo{candidates: springfields()}, fc, store, Options{})

	a := svc.Begin("Springfield", time.Second)
	b := svc.Begin("Springfield", time.Second)
	assert.NotEqual(t, a.ID, b.ID)

	close(fc.block)

	require.Eventually(t, func() bool { return store.Len() == 2 }, time.Second, 5*time.Millisecond)
}

func TestTracker_TransitionsAreOneWay(t *testing.T) {
	tr := NewTracker(10, clockwork.NewFakeClock())

	a := tr.create("x")
	assert.Equal(t, StateIdle, a.State)

	assert.False(t, tr.transition(a.ID, StateLoading, StateSuccess, nil), "cannot finish before loading")
	assert.True(t, tr.transition(a.ID, StateIdle, StateLoading, nil))
	assert.True(t, tr.transition(a.ID, StateLoading, StateError, nil))
	assert.False(t, tr.transition(a.ID, StateLoading, StateSuccess, nil), "finished attempts stay finished")

	got, err := tr.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StateError, got.State)
}

func TestTracker_EvictsOldestAttempts(t *testing.T) {
	tr := NewTracker(2, clockwork.NewFakeClock())

	first := tr.create("a")
	tr.create("b")
	tr.create("c")

	_, err := tr.Get(first.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestTracker_UnknownAttempt(t *testing.T) {
	svc, _ := newTestService(&fakeGeo{}, &fakeForecast{}, &listStore{}, Options{})
	_, err := svc.Attempt("nope")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}
