package weather

import (
	"context"
	"fmt"
	"strings"
)

// Disambiguator picks exactly one geocoding candidate for a query.
type Disambiguator struct {
	geo           GeoSearcher
	country       string
	count         int
	requireRegion bool
}

// NewDisambiguator creates a Disambiguator. When requireRegion is false a
// region qualifier is ignored and the provider's first candidate wins.
func NewDisambiguator(geo GeoSearcher, country string, count int, requireRegion bool) *Disambiguator {
	if count <= 0 {
		count = 5
	}
	return &Disambiguator{
		geo:           geo,
		country:       strings.ToUpper(country),
		count:         count,
		requireRegion: requireRegion,
	}
}

// Resolve geocodes the city part of q and selects a candidate.
// Every exchange with the geocoder is appended to trace.
func (d *Disambiguator) Resolve(ctx context.Context, q PlaceQuery, trace *Trace) (ResolvedLocation, error) {
	city, region, hasRegion := q.Parse()
	if city == "" {
		return ResolvedLocation{}, fmt.Errorf("%w: empty query", ErrLocationNotFound)
	}

	candidates, ex, err := d.geo.Search(ctx, GeoSearchRequest{
		Name:    city,
		Count:   d.count,
		Country: d.country,
	})
	trace.Record(ex)
	if err != nil {
		return ResolvedLocation{}, err
	}

	return Select(candidates, d.country, region, hasRegion && d.requireRegion)
}

// Select applies the selection rule to an ordered candidate list.
// With a region the first exact (case-sensitive) region match in the target
// country wins; without one the first candidate wins, provided it is in the
// target country.
func Select(candidates []GeoCandidate, country, region string, matchRegion bool) (ResolvedLocation, error) {
	if len(candidates) == 0 {
		return ResolvedLocation{}, ErrLocationNotFound
	}

	if !matchRegion {
		first := candidates[0]
		if !strings.EqualFold(first.CountryCode, country) {
			return ResolvedLocation{}, fmt.Errorf("%w: first match %q is outside %s", ErrLocationNotFound, first.Label(), country)
		}
		return ResolvedLocation(first), nil
	}

	for _, c := range candidates {
		if strings.EqualFold(c.CountryCode, country) && c.Region == region {
			return ResolvedLocation(c), nil
		}
	}
	return ResolvedLocation{}, fmt.Errorf("%w: %q", ErrRegionMismatch, region)
}
