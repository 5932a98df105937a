package allcities

import (
	"github.com/cockroachdb/errors"
)

// MinDumpCities is the smallest plausible size of a full cities1000 dump
// (~150K cities with pop > 1000 at the time of writing).
const MinDumpCities = 140000

// knownCity is a city every full dump must contain.
type knownCity struct {
	name    string
	country string
}

// knownCities are chosen to be unambiguous capitals and large cities.
var knownCities = []knownCity{
	{"Paris", "FR"},
	{"Tokyo", "JP"},
	{"Sydney", "AU"},
	{"Berlin", "DE"},
	{"Austin", "US"},
	{"Nairobi", "KE"},
}

// Validate checks that set looks like a complete dump: at least minCount
// members, and each of the known cities found by name and country.
func Validate(set *CitySet, minCount int) error {
	if n := set.Len(); n < minCount {
		return errors.Newf("city count too low: got %d, want >= %d", n, minCount)
	}
	for _, kc := range knownCities {
		found, err := set.Filter(Where(FieldName, kc.name), Where(FieldCountryCode, kc.country))
		if err != nil {
			return err
		}
		if found.Len() == 0 {
			return errors.Newf("known city %s, %s not found", kc.name, kc.country)
		}
	}
	return nil
}
