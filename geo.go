package allcities

import (
	"math"

	"github.com/golang/geo/s2"
)

// earthRadiusKm is the mean Earth radius used to turn angles into distances.
const earthRadiusKm = 6371.0088

// hasCoordinates reports whether both latitude and longitude parsed.
func (c *City) hasCoordinates() bool {
	for _, name := range []string{FieldLatitude, FieldLongitude} {
		f := schemaIndex[name]
		if c.missingField(f) {
			return false
		}
		if _, bad := c.raw[name]; bad {
			return false
		}
	}
	return true
}

// DistanceKm returns the great-circle distance from c to (lat, lng).
// Cities without usable coordinates are infinitely far away.
func (c City) DistanceKm(lat, lng float64) float64 {
	if !c.hasCoordinates() {
		return math.Inf(1)
	}
	from := s2.LatLngFromDegrees(c.Latitude, c.Longitude)
	to := s2.LatLngFromDegrees(lat, lng)
	return from.Distance(to).Radians() * earthRadiusKm
}

// Near returns the members within radiusKm of (lat, lng). It scans every
// member; there is no spatial index.
func (s *CitySet) Near(lat, lng, radiusKm float64) *CitySet {
	out := make(map[string]City)
	for k, c := range s.members() {
		if c.DistanceKm(lat, lng) <= radiusKm {
			out[k] = c
		}
	}
	return &CitySet{m: out}
}

// Nearest returns the member closest to (lat, lng). Ties go to the larger
// population, then the lower geonameid. ok is false when no member has
// usable coordinates.
func (s *CitySet) Nearest(lat, lng float64) (nearest City, ok bool) {
	best := math.Inf(1)
	for _, c := range s.members() {
		d := c.DistanceKm(lat, lng)
		if math.IsInf(d, 1) {
			continue
		}
		if !ok || d < best || (d == best && closerTie(c, nearest)) {
			nearest, best, ok = c, d, true
		}
	}
	return nearest, ok
}

func closerTie(a, b City) bool {
	if a.Population != b.Population {
		return a.Population > b.Population
	}
	return a.GeonameID < b.GeonameID
}
