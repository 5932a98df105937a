package allcities

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"unsafe"
)

func TestParseCities(t *testing.T) {
	input := strings.Join([]string{
		rowParis,
		"",
		rowLondon + "\r",
		"   ",
		rowTokyo,
	}, "\n") + "\n"

	cities, err := ParseCities(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCities() error = %v", err)
	}
	if len(cities) != 3 {
		t.Fatalf("got %d cities, want 3", len(cities))
	}
	for i, want := range []string{"Paris", "London", "Tokyo"} {
		if cities[i].Name != want {
			t.Errorf("cities[%d].Name = %q, want %q", i, cities[i].Name, want)
		}
	}
	if got := cities[1].ModificationDate; got != "2024-01-01" {
		t.Errorf("carriage return leaked into last column: %q", got)
	}
}

func TestParseCities_Empty(t *testing.T) {
	cities, err := ParseCities(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseCities() error = %v", err)
	}
	if len(cities) != 0 {
		t.Errorf("got %d cities from empty input", len(cities))
	}
}

func TestParseCities_MalformedRowsDegrade(t *testing.T) {
	input := "1\tShort\n" + "x\tBad Id\tBad Id\t\tnan?\n" + rowBerlin
	cities, err := ParseCities(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCities() error = %v", err)
	}
	if len(cities) != 3 {
		t.Fatalf("got %d cities, want 3", len(cities))
	}
	if raw, ok := cities[1].Raw(FieldGeonameID); !ok || raw != "x" {
		t.Errorf("Raw(geonameid) = %q, %v", raw, ok)
	}
	if _, ok := cities[1].Raw(FieldLatitude); !ok {
		t.Error("unparsable latitude should be kept as raw text")
	}
	if cities[2].Name != "Berlin" {
		t.Errorf("rows after a malformed row should parse normally, got %v", cities[2])
	}
}

func TestParseCities_InternsRepeatedValues(t *testing.T) {
	cities := fixtureCities(t)
	var paris, austin City
	for _, c := range cities {
		switch {
		case c.Name == "Paris" && c.CountryCode == "US":
			paris = c
		case c.Name == "Austin":
			austin = c
		}
	}
	if paris.Timezone != "America/Chicago" || paris.Timezone != austin.Timezone {
		t.Fatalf("timezones = %q, %q", paris.Timezone, austin.Timezone)
	}
	if !sameString(paris.Timezone, austin.Timezone) {
		t.Error("repeated timezone should share one backing string")
	}
}

func TestParseCities_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ParseCities(iotest.ErrReader(boom))
	if !errors.Is(err, boom) {
		t.Fatalf("ParseCities() error = %v, want wrapped %v", err, boom)
	}
	if !strings.Contains(err.Error(), "reading line 1") {
		t.Errorf("error %q should name the line", err)
	}
}

func TestParseCities_LongLine(t *testing.T) {
	alt := strings.Repeat("Ñame,", 20000)
	row := geoRow("1", "Long", strings.TrimSuffix(alt, ","), "1", "1", "XX", "", "1000", "")
	cities, err := ParseCities(strings.NewReader(row))
	if err != nil {
		t.Fatalf("ParseCities() error = %v", err)
	}
	if len(cities) != 1 || len(cities[0].AlternateNames) != 20000 {
		t.Fatalf("long alternatenames row was not parsed whole")
	}
}

// sameString reports whether a and b share their backing bytes.
func sameString(a, b string) bool {
	return len(a) == len(b) && unsafe.StringData(a) == unsafe.StringData(b)
}
