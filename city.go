package allcities

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// City is one row of the GeoNames cities1000 dump.
//
// A City is a plain value: two cities are the same set member when every
// field, including the missing and raw-text markers, is equal.
type City struct {
	GeonameID        int64    // integer id of record in geonames database
	Name             string   // name of geographical point (utf8)
	ASCIIName        string   // name in plain ascii characters
	AlternateNames   []string // alternate names, split from the comma separated column
	Latitude         float64  // decimal degrees (wgs84)
	Longitude        float64  // decimal degrees (wgs84)
	FeatureClass     string   // see http://www.geonames.org/export/codes.html
	FeatureCode      string   // see http://www.geonames.org/export/codes.html
	CountryCode      string   // ISO-3166 2-letter country code
	CC2              string   // alternate country codes, comma separated
	Admin1Code       string   // first administrative division (state, province)
	Admin2Code       string   // second administrative division (county)
	Admin3Code       string
	Admin4Code       string
	Population       int64
	Elevation        int64  // meters
	DEM              int64  // digital elevation model, meters
	Timezone         string // IANA timezone id
	ModificationDate string // yyyy-MM-dd

	missing uint32            // bit per schema column whose numeric token was empty
	raw     map[string]string // numeric columns holding the unparsed token
}

// IsMissing reports whether the named numeric field had no value in the source row.
func (c City) IsMissing(name string) bool {
	f, ok := schemaIndex[name]
	if !ok {
		return false
	}
	return c.missingField(f)
}

func (c *City) missingField(f *field) bool {
	return c.missing&(1<<uint(f.index)) != 0
}

// Raw returns the original token of a numeric field that could not be
// coerced to its declared type.
func (c City) Raw(name string) (string, bool) {
	v, ok := c.raw[name]
	return v, ok
}

// String renders the city as <name, admin1, country>.
func (c City) String() string {
	return fmt.Sprintf("<%s, %s, %s>", c.Name, c.Admin1Code, c.CountryCode)
}

// Geohash encodes the city's coordinates with the given precision.
func (c City) Geohash(precision int) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
}

// Equal reports structural equality.
func (c City) Equal(o City) bool {
	return c.key() == o.key()
}

// key is the canonical identity of the city for set membership. Every
// value is written with its byte length in front, so no field content can
// shift a boundary and make two different cities share a key.
func (c City) key() string {
	var b strings.Builder
	b.Grow(128)
	for _, f := range schema {
		if f.kind == kindList {
			list := *f.list(&c)
			b.WriteString(strconv.Itoa(len(list)))
			b.WriteByte(';')
			for _, v := range list {
				writeKeyPart(&b, v)
			}
		} else if raw, bad := c.raw[f.name]; bad {
			b.WriteByte('!')
			writeKeyPart(&b, raw)
		} else {
			writeKeyPart(&b, f.formatValue(&c))
		}
	}
	b.WriteString(strconv.FormatUint(uint64(c.missing), 16))
	return b.String()
}

func writeKeyPart(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

// ParseCity builds a City from the raw tokens of one dump row.
//
// Tokens map to fields by position. Coercion is best effort: an empty
// numeric token marks the field missing, a non-empty one that does not
// parse is logged and kept as raw text. Short rows leave the remaining
// fields at their defaults; tokens beyond the schema are logged and dropped.
func ParseCity(tokens []string) City {
	return parseCity(tokens, logger(), nil, 0)
}

func parseCity(tokens []string, log *zap.SugaredLogger, pool *stringPool, line int) City {
	var c City
	if len(tokens) > len(schema) {
		log.Errorw("too many columns",
			"line", line,
			"columns", len(tokens),
			"want", len(schema),
		)
		tokens = tokens[:len(schema)]
	}

	for i, tok := range tokens {
		f := schema[i]
		switch f.kind {
		case kindText:
			if f.intern {
				tok = pool.intern(tok)
			}
			*f.text(&c) = tok
		case kindList:
			if tok != "" {
				*f.list(&c) = strings.Split(tok, ",")
			}
		case kindInt, kindFloat:
			c.setNumeric(f, tok, log, line)
		}
	}
	return c
}

func (c *City) setNumeric(f *field, tok string, log *zap.SugaredLogger, line int) {
	if tok == "" {
		c.missing |= 1 << uint(f.index)
		return
	}
	s := strings.TrimSpace(tok)

	var err error
	switch f.kind {
	case kindInt:
		var v int64
		v, err = strconv.ParseInt(s, 10, 64)
		if err == nil {
			*f.integer(c) = v
			return
		}
	case kindFloat:
		var v float64
		v, err = strconv.ParseFloat(s, 64)
		if err == nil {
			*f.float(c) = v
			return
		}
	}

	log.Errorw("types incompatible",
		"field", f.name,
		"value", tok,
		"want", f.kind.String(),
		"line", line,
	)
	if c.raw == nil {
		c.raw = make(map[string]string, 1)
	}
	c.raw[f.name] = tok
}

// Entry is one field of a Dict.
type Entry struct {
	Field string
	Value any
}

// Dict is an ordered field-name to value view of a City.
type Dict []Entry

// Dict renders the non-empty fields of c in schema order. Empty strings,
// zeros, empty lists and missing values are omitted.
func (c City) Dict() Dict {
	d := make(Dict, 0, len(schema))
	for _, f := range schema {
		if f.falsy(&c) {
			continue
		}
		d = append(d, Entry{Field: f.name, Value: f.value(&c)})
	}
	return d
}

// Get returns the value stored under name.
func (d Dict) Get(name string) (any, bool) {
	for _, e := range d {
		if e.Field == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Map converts the view into an unordered map.
func (d Dict) Map() map[string]any {
	m := make(map[string]any, len(d))
	for _, e := range d {
		m[e.Field] = e.Value
	}
	return m
}

// MarshalJSON encodes the view as a JSON object preserving field order.
func (d Dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Field)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
