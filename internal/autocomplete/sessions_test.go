package autocomplete

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherboard/internal/observability"
)

func TestSessions_OpenGetClose(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	s := NewSessions(newGatedGeo(), &fakeResolver{}, Options{}, 10, metrics)

	id, ctrl := s.Open()
	require.NotEmpty(t, id)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ActiveSessions), 0)

	s.Close(id)
	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.ActiveSessions), 0)

	s.Close(id)
}

func TestSessions_EvictsOldest(t *testing.T) {
	s := NewSessions(newGatedGeo(), nil, Options{}, 2, nil)

	first, _ := s.Open()
	s.Open()
	s.Open()

	assert.Equal(t, 2, s.Len())
	_, err := s.Get(first)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_CloseAll(t *testing.T) {
	s := NewSessions(newGatedGeo(), nil, Options{}, 0, nil)
	s.Open()
	s.Open()

	s.CloseAll()
	assert.Zero(t, s.Len())
}
