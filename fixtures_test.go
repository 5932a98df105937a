package allcities

import (
	"strings"
	"testing"
)

// geoRow builds a 19-column cities1000 row with the columns tests care about.
func geoRow(id, name, alt, lat, lng, cc, admin1, pop, tz string) string {
	return strings.Join([]string{
		id, name, name, alt, lat, lng,
		"P", "PPL", cc, "", admin1, "", "", "",
		pop, "", "0", tz, "2024-01-01",
	}, "\t")
}

var (
	rowParis    = geoRow("2988507", "Paris", "Lutece,Parigi,París", "48.85341", "2.3488", "FR", "11", "2138551", "Europe/Paris")
	rowParisTX  = geoRow("4717560", "Paris", "", "33.66094", "-95.55551", "US", "TX", "25000", "America/Chicago")
	rowLondon   = geoRow("2643743", "London", "Londres,Londra", "51.50853", "-0.12574", "GB", "ENG", "9000000", "Europe/London")
	rowTokyo    = geoRow("1850147", "Tokyo", "Edo,TYO", "35.6895", "139.69171", "JP", "40", "9733276", "Asia/Tokyo")
	rowSydney   = geoRow("2147714", "Sydney", "", "-33.86785", "151.20732", "AU", "02", "4627345", "Australia/Sydney")
	rowBerlin   = geoRow("2950159", "Berlin", "", "52.52437", "13.41053", "DE", "16", "3426354", "Europe/Berlin")
	rowAustin   = geoRow("4671654", "Austin", "", "30.26715", "-97.74306", "US", "TX", "931830", "America/Chicago")
	rowNairobi  = geoRow("184745", "Nairobi", "", "-1.28333", "36.81667", "KE", "05", "2750547", "Africa/Nairobi")
	rowSaoPaulo = geoRow("3448439", "São Paulo", "Sampa", "-23.5475", "-46.63611", "BR", "27", "10021295", "America/Sao_Paulo")
	rowHamlet   = geoRow("9999999", "Quiet Hamlet", "", "10", "10", "XX", "", "0", "")
)

// fixtureRows covers every city Validate looks for plus a few edge cases.
var fixtureRows = []string{
	rowParis, rowParisTX, rowLondon, rowTokyo, rowSydney,
	rowBerlin, rowAustin, rowNairobi, rowSaoPaulo, rowHamlet,
}

func parseRow(t testing.TB, row string) City {
	t.Helper()
	return ParseCity(strings.Split(row, "\t"))
}

func fixtureCities(t testing.TB) []City {
	t.Helper()
	cities, err := ParseCities(strings.NewReader(strings.Join(fixtureRows, "\n")))
	if err != nil {
		t.Fatalf("ParseCities() error = %v", err)
	}
	return cities
}

func fixtureSet(t testing.TB) *CitySet {
	t.Helper()
	return NewCitySet(fixtureCities(t)...)
}

// names returns "name/country" for each member, in Sorted order.
func names(s *CitySet) []string {
	var out []string
	for _, c := range s.Sorted() {
		out = append(out, c.Name+"/"+c.CountryCode)
	}
	return out
}
