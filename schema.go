package allcities

import (
	"slices"
	"strconv"
)

// Field names of the GeoNames "geoname" table, in column order.
const (
	FieldGeonameID        = "geonameid"
	FieldName             = "name"
	FieldASCIIName        = "asciiname"
	FieldAlternateNames   = "alternatenames"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldFeatureClass     = "feature_class"
	FieldFeatureCode      = "feature_code"
	FieldCountryCode      = "country_code"
	FieldCC2              = "cc2"
	FieldAdmin1Code       = "admin1_code"
	FieldAdmin2Code       = "admin2_code"
	FieldAdmin3Code       = "admin3_code"
	FieldAdmin4Code       = "admin4_code"
	FieldPopulation       = "population"
	FieldElevation        = "elevation"
	FieldDEM              = "dem"
	FieldTimezone         = "timezone"
	FieldModificationDate = "modification_date"
)

// fieldKind is the declared type of a column. It decides both how the raw
// token is coerced and which kind of filter condition the field accepts.
type fieldKind uint8

const (
	kindText fieldKind = iota
	kindList
	kindInt
	kindFloat
)

func (k fieldKind) String() string {
	switch k {
	case kindText:
		return "text"
	case kindList:
		return "list"
	case kindInt:
		return "integer"
	case kindFloat:
		return "float"
	}
	return "unknown"
}

// field describes one column. Exactly one accessor is set, matching kind.
type field struct {
	name   string
	index  int
	kind   fieldKind
	intern bool // low-cardinality text, worth pooling during bulk loads

	text    func(*City) *string
	list    func(*City) *[]string
	integer func(*City) *int64
	float   func(*City) *float64
}

// schema is the fixed 19-column layout of cities1000.txt.
var schema = []*field{
	{name: FieldGeonameID, kind: kindInt, integer: func(c *City) *int64 { return &c.GeonameID }},
	{name: FieldName, kind: kindText, text: func(c *City) *string { return &c.Name }},
	{name: FieldASCIIName, kind: kindText, text: func(c *City) *string { return &c.ASCIIName }},
	{name: FieldAlternateNames, kind: kindList, list: func(c *City) *[]string { return &c.AlternateNames }},
	{name: FieldLatitude, kind: kindFloat, float: func(c *City) *float64 { return &c.Latitude }},
	{name: FieldLongitude, kind: kindFloat, float: func(c *City) *float64 { return &c.Longitude }},
	{name: FieldFeatureClass, kind: kindText, intern: true, text: func(c *City) *string { return &c.FeatureClass }},
	{name: FieldFeatureCode, kind: kindText, intern: true, text: func(c *City) *string { return &c.FeatureCode }},
	{name: FieldCountryCode, kind: kindText, intern: true, text: func(c *City) *string { return &c.CountryCode }},
	{name: FieldCC2, kind: kindText, intern: true, text: func(c *City) *string { return &c.CC2 }},
	{name: FieldAdmin1Code, kind: kindText, intern: true, text: func(c *City) *string { return &c.Admin1Code }},
	{name: FieldAdmin2Code, kind: kindText, intern: true, text: func(c *City) *string { return &c.Admin2Code }},
	{name: FieldAdmin3Code, kind: kindText, text: func(c *City) *string { return &c.Admin3Code }},
	{name: FieldAdmin4Code, kind: kindText, text: func(c *City) *string { return &c.Admin4Code }},
	{name: FieldPopulation, kind: kindInt, integer: func(c *City) *int64 { return &c.Population }},
	{name: FieldElevation, kind: kindInt, integer: func(c *City) *int64 { return &c.Elevation }},
	{name: FieldDEM, kind: kindInt, integer: func(c *City) *int64 { return &c.DEM }},
	{name: FieldTimezone, kind: kindText, intern: true, text: func(c *City) *string { return &c.Timezone }},
	{name: FieldModificationDate, kind: kindText, intern: true, text: func(c *City) *string { return &c.ModificationDate }},
}

// schemaIndex maps a field name to its column descriptor.
var schemaIndex = func() map[string]*field {
	idx := make(map[string]*field, len(schema))
	for i, f := range schema {
		f.index = i
		idx[f.name] = f
	}
	return idx
}()

// Fields returns the schema field names in column order.
func Fields() []string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.name
	}
	return names
}

// numericValue returns the field's value as a float64. ok is false when the
// field is missing or holds text that failed coercion.
func (f *field) numericValue(c *City) (v float64, ok bool) {
	if c.missingField(f) {
		return 0, false
	}
	if _, bad := c.raw[f.name]; bad {
		return 0, false
	}
	switch f.kind {
	case kindInt:
		return float64(*f.integer(c)), true
	case kindFloat:
		return *f.float(c), true
	}
	return 0, false
}

// value returns the typed value for display. Text that failed numeric
// coercion is returned as a string.
func (f *field) value(c *City) any {
	if raw, bad := c.raw[f.name]; bad {
		return raw
	}
	switch f.kind {
	case kindText:
		return *f.text(c)
	case kindList:
		return slices.Clone(*f.list(c))
	case kindInt:
		return *f.integer(c)
	case kindFloat:
		return *f.float(c)
	}
	return nil
}

// falsy mirrors "empty string, zero, empty list or missing".
func (f *field) falsy(c *City) bool {
	if c.missingField(f) {
		return true
	}
	if raw, bad := c.raw[f.name]; bad {
		return raw == ""
	}
	switch f.kind {
	case kindText:
		return *f.text(c) == ""
	case kindList:
		return len(*f.list(c)) == 0
	case kindInt:
		return *f.integer(c) == 0
	case kindFloat:
		return *f.float(c) == 0
	}
	return true
}

// formatValue renders the field for the canonical set key.
func (f *field) formatValue(c *City) string {
	switch f.kind {
	case kindText:
		return *f.text(c)
	case kindInt:
		return strconv.FormatInt(*f.integer(c), 10)
	case kindFloat:
		v := *f.float(c)
		if v == 0 {
			v = 0 // fold -0 into 0
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}
