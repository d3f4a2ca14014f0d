package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceQuery_Parse(t *testing.T) {
	cases := []struct {
		in        PlaceQuery
		city      string
		region    string
		hasRegion bool
	}{
		{"Springfield", "Springfield", "", false},
		{"  Springfield  ", "Springfield", "", false},
		{"Springfield, MO", "Springfield", "MO", true},
		{"Springfield ,MO ", "Springfield", "MO", true},
		{"Springfield,", "Springfield", "", false},
		{"Portland, Oregon, US", "Portland", "Oregon, US", true},
		{"", "", "", false},
	}
	for _, tc := range cases {
		city, region, has := tc.in.Parse()
		assert.Equal(t, tc.city, city, "query %q", tc.in)
		assert.Equal(t, tc.region, region, "query %q", tc.in)
		assert.Equal(t, tc.hasRegion, has, "query %q", tc.in)
	}
}

func TestDisambiguator_SelectsByRegion(t *testing.T) {
	geo := &fakeGeo{candidates: springfields()}
	d := NewDisambiguator(geo, "US", 5, true)

	var trace Trace
	loc, err := d.Resolve(context.Background(), "Springfield, MO", &trace)
	require.NoError(t, err)

	assert.Equal(t, "MO", loc.Region)
	assert.Equal(t, 37.2, loc.Latitude)
	require.Len(t, geo.requests, 1)
	assert.Equal(t, GeoSearchRequest{Name: "Springfield", Count: 5, Country: "US"}, geo.requests[0])
	assert.Len(t, trace.Lines(), 2, "geocode URL and response are logged")
}

func TestDisambiguator_UnknownRegionIsNotFound(t *testing.T) {
	d := NewDisambiguator(&fakeGeo{candidates: springfields()}, "US", 5, true)

	_, err := d.Resolve(context.Background(), "Springfield, TX", &Trace{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.ErrorIs(t, err, ErrRegionMismatch)
}

func TestDisambiguator_RegionMatchIsCaseSensitive(t *testing.T) {
	d := NewDisambiguator(&fakeGeo{candidates: springfields()}, "US", 5, true)

	_, err := d.Resolve(context.Background(), "Springfield, mo", &Trace{})
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestDisambiguator_NoRegionPicksFirst(t *testing.T) {
	candidates := append(springfields(), GeoCandidate{Name: "Springfield", Region: "MA", CountryCode: "US"})
	d := NewDisambiguator(&fakeGeo{candidates: candidates}, "US", 5, true)

	loc, err := d.Resolve(context.Background(), "Springfield", &Trace{})
	require.NoError(t, err)
	assert.Equal(t, "IL", loc.Region)
}

// Without region matching a qualifier is ignored and the first namesake
// wins, even when the user asked for another region. This pins the
// long-standing behaviour rather than correcting it.
func TestDisambiguator_KnownQuirk_FirstNamesakeWithoutRegionMatching(t *testing.T) {
	d := NewDisambiguator(&fakeGeo{candidates: springfields()}, "US", 5, false)

	loc, err := d.Resolve(context.Background(), "Springfield, MO", &Trace{})
	require.NoError(t, err)
	assert.Equal(t, "IL", loc.Region)
}

func TestDisambiguator_NoCandidates(t *testing.T) {
	d := NewDisambiguator(&fakeGeo{}, "US", 5, true)

	_, err := d.Resolve(context.Background(), "Atlantis", &Trace{})
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.False(t, errors.Is(err, ErrRegionMismatch))
}

func TestDisambiguator_EmptyQuery(t *testing.T) {
	geo := &fakeGeo{candidates: springfields()}
	d := NewDisambiguator(geo, "US", 5, true)

	_, err := d.Resolve(context.Background(), " , MO", &Trace{})
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.Empty(t, geo.requests)
}

func TestDisambiguator_GeocoderErrorPropagates(t *testing.T) {
	d := NewDisambiguator(&fakeGeo{err: ErrNetwork}, "US", 5, true)

	var trace Trace
	_, err := d.Resolve(context.Background(), "Springfield", &trace)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, []string{"geo?name=Springfield"}, trace.Lines(), "only the URL is logged when no response arrived")
}

func TestSelect_RejectsForeignCandidates(t *testing.T) {
	candidates := []GeoCandidate{
		{Name: "Paris", Region: "Île-de-France", CountryCode: "FR"},
		{Name: "Paris", Region: "Texas", CountryCode: "US"},
	}

	loc, err := Select(candidates, "US", "Texas", true)
	require.NoError(t, err)
	assert.Equal(t, "Texas", loc.Region)

	_, err = Select(candidates, "US", "", false)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestSelect_IsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		loc, err := Select(springfields(), "US", "MO", true)
		require.NoError(t, err)
		assert.Equal(t, "MO", loc.Region)
	}
}
