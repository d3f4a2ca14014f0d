package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherboard/internal/weather"
)

func rec(id string) weather.WeatherRecord {
	return weather.WeatherRecord{ID: id, Name: "City " + id}
}

func ids(records []weather.WeatherRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestResultList_EvictsOldestFirst(t *testing.T) {
	s := NewResultList(5)

	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		s.Insert(rec(id))
	}

	assert.Equal(t, []string{"B", "C", "D", "E", "F"}, ids(s.List()))
}

func TestResultList_NeverExceedsCapacity(t *testing.T) {
	for _, max := range []int{1, 5, 10} {
		t.Run(fmt.Sprintf("max=%d", max), func(t *testing.T) {
			s := NewResultList(max)
			for i := 0; i < 3*max; i++ {
				s.Insert(rec(fmt.Sprint(i)))
				require.LessOrEqual(t, s.Len(), max)
			}
			assert.Equal(t, max, s.Len())
			assert.Equal(t, fmt.Sprint(3*max-1), s.List()[max-1].ID)
		})
	}
}

func TestResultList_SingleCardReplaces(t *testing.T) {
	s := NewResultList(1)
	s.Insert(rec("A"))
	s.Insert(rec("B"))

	assert.Equal(t, []string{"B"}, ids(s.List()))
}

func TestResultList_RemoveUnknownIsNoop(t *testing.T) {
	s := NewResultList(5)
	s.Insert(rec("A"))
	s.Insert(rec("B"))

	s.Remove("missing")
	assert.Equal(t, []string{"A", "B"}, ids(s.List()))

	s.Remove("A")
	s.Remove("A")
	assert.Equal(t, []string{"B"}, ids(s.List()))
}

func TestResultList_RemoveKeepsOrder(t *testing.T) {
	s := NewResultList(5)
	for _, id := range []string{"A", "B", "C", "D"} {
		s.Insert(rec(id))
	}

	s.Remove("B")
	s.Insert(rec("E"))

	assert.Equal(t, []string{"A", "C", "D", "E"}, ids(s.List()))
}

func TestResultList_ListReturnsCopy(t *testing.T) {
	s := NewResultList(2)
	s.Insert(rec("A"))

	list := s.List()
	list[0].ID = "mutated"

	assert.Equal(t, "A", s.List()[0].ID)
}

func TestResultList_NonPositiveCapacity(t *testing.T) {
	s := NewResultList(0)
	assert.Equal(t, 1, s.Cap())
}

func TestResultList_ConcurrentInsertRespectsBound(t *testing.T) {
	s := NewResultList(5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Insert(rec(fmt.Sprint(i)))
			assert.LessOrEqual(t, len(s.List()), 5)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, s.Len())
}
