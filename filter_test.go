package allcities

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	set := fixtureSet(t)

	tests := []struct {
		name  string
		conds []Condition
		want  []string
	}{
		{
			name:  "name is case-insensitive substring",
			conds: []Condition{Where(FieldName, "PARIS")},
			want:  []string{"Paris/FR", "Paris/US"},
		},
		{
			name:  "conditions are conjunctive",
			conds: []Condition{Where(FieldName, "paris"), Where(FieldCountryCode, "fr")},
			want:  []string{"Paris/FR"},
		},
		{
			name:  "alternatenames matches any element",
			conds: []Condition{Where(FieldAlternateNames, "edo")},
			want:  []string{"Tokyo/JP"},
		},
		{
			name:  "alternatenames prefix",
			conds: []Condition{Where(FieldAlternateNames, "LOND")},
			want:  []string{"London/GB"},
		},
		{
			name:  "unicode folding",
			conds: []Condition{Where(FieldName, "SÃO")},
			want:  []string{"São Paulo/BR"},
		},
		{
			name:  "decomposed accent",
			conds: []Condition{Where(FieldName, "Sa\u0303o")},
			want:  []string{"São Paulo/BR"},
		},
		{
			name:  "substring in the middle",
			conds: []Condition{Where(FieldTimezone, "europe/")},
			want:  []string{"London/GB", "Berlin/DE", "Paris/FR"},
		},
		{
			name:  "empty text value matches everything",
			conds: []Condition{Where(FieldName, "")},
			want:  names(set),
		},
		{
			name:  "empty value matches cities without alternate names",
			conds: []Condition{Where(FieldAlternateNames, "")},
			want:  names(set),
		},
		{
			name:  "greater than",
			conds: []Condition{Where(FieldPopulation, "> 5000000")},
			want:  []string{"Tokyo/JP", "London/GB", "São Paulo/BR"},
		},
		{
			name:  "operator without spaces",
			conds: []Condition{Where(FieldPopulation, ">=9733276")},
			want:  []string{"Tokyo/JP", "São Paulo/BR"},
		},
		{
			name:  "negative float bound",
			conds: []Condition{Where(FieldLatitude, "< -30")},
			want:  []string{"Sydney/AU"},
		},
		{
			name:  "inclusive bound",
			conds: []Condition{Where(FieldLongitude, "<= -46.63611")},
			want:  []string{"São Paulo/BR", "Austin/US", "Paris/US"},
		},
		{
			name:  "single equals aliases double",
			conds: []Condition{Where(FieldPopulation, "= 25000")},
			want:  []string{"Paris/US"},
		},
		{
			name:  "geonameid is numeric",
			conds: []Condition{Where(FieldGeonameID, "< 2000000")},
			want:  []string{"Nairobi/KE", "Tokyo/JP"},
		},
		{
			name:  "zero never matches not-equal",
			conds: []Condition{Where(FieldPopulation, "!= 0")},
			want: []string{
				"Nairobi/KE", "Tokyo/JP", "Sydney/AU", "London/GB", "Berlin/DE",
				"Paris/FR", "São Paulo/BR", "Austin/US", "Paris/US",
			},
		},
		{
			name:  "zero never matches equal zero",
			conds: []Condition{Where(FieldPopulation, "== 0")},
			want:  nil,
		},
		{
			name:  "zero dem never matches",
			conds: []Condition{Where(FieldDEM, "> -1")},
			want:  nil,
		},
		{
			name:  "missing elevation never matches",
			conds: []Condition{Where(FieldElevation, "!= 5")},
			want:  nil,
		},
		{
			name:  "no conditions returns everything",
			conds: nil,
			want:  names(set),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := set.Filter(tt.conds...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilter_Errors(t *testing.T) {
	tests := []struct {
		name       string
		cond       Condition
		badOp      bool
		wantInMsg  string
		wantInHint string
	}{
		{
			name:       "unknown field",
			cond:       Where("populaton", "> 5"),
			wantInMsg:  "populaton",
			wantInHint: `did you mean "population"?`,
		},
		{
			name:      "unknown field without suggestion",
			cond:      Where("zzzzzzzzzzzz", "x"),
			wantInMsg: "not a valid property",
		},
		{
			name:       "numeric value without operator",
			cond:       Where(FieldElevation, "xyz"),
			wantInMsg:  `elevation="xyz"`,
			wantInHint: `"<= -33.8"`,
		},
		{
			name:      "bare number",
			cond:      Where(FieldPopulation, "5"),
			wantInMsg: "[operator] [value]",
		},
		{
			name:      "operator without number",
			cond:      Where(FieldPopulation, ">"),
			wantInMsg: "[operator] [value]",
		},
		{
			name:       "reversed operator",
			cond:       Where(FieldPopulation, "=> 5"),
			badOp:      true,
			wantInMsg:  `unknown operator "=>"`,
			wantInHint: "valid operators",
		},
		{
			name:      "lone bang",
			cond:      Where(FieldLatitude, "!5"),
			badOp:     true,
			wantInMsg: `unknown operator "!"`,
		},
		{
			name:      "angle brackets",
			cond:      Where(FieldLatitude, "<> 5"),
			badOp:     true,
			wantInMsg: `unknown operator "<>"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, set := range []*CitySet{fixtureSet(t), NewCitySet(), nil} {
				got, err := set.Filter(Where(FieldName, "paris"), tt.cond)
				require.Error(t, err)
				assert.Nil(t, got)

				assert.True(t, errors.Is(err, ErrInvalidFilter))
				assert.Equal(t, tt.badOp, errors.Is(err, ErrInvalidOperator))
				assert.Contains(t, err.Error(), tt.wantInMsg)

				var fe *FilterError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, tt.cond.Field, fe.Field)

				if tt.wantInHint != "" {
					assert.Contains(t, strings.Join(errors.GetAllHints(err), "\n"), tt.wantInHint)
				}
			}
		})
	}
}

func TestFilter_DuplicateNames(t *testing.T) {
	paris := parseRow(t, rowParis)
	set := NewCitySet(paris, parseRow(t, rowParis), parseRow(t, rowLondon))
	require.Equal(t, 2, set.Len())

	got, err := set.Filter(Where(FieldName, "paris"))
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.True(t, got.Contains(paris))
}

func TestFilter_Idempotent(t *testing.T) {
	set := fixtureSet(t)
	cond := Where(FieldPopulation, "> 1000000")

	once, err := set.Filter(cond)
	require.NoError(t, err)
	twice, err := once.Filter(cond)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
	assert.True(t, once.IsSubset(set))
}

func TestFilter_ChainedEqualsCombined(t *testing.T) {
	set := fixtureSet(t)
	a, b := Where(FieldTimezone, "america"), Where(FieldPopulation, "< 1000000")

	combined, err := set.Filter(a, b)
	require.NoError(t, err)

	first, err := set.Filter(a)
	require.NoError(t, err)
	chained, err := first.Filter(b)
	require.NoError(t, err)

	assert.Equal(t, []string{"Austin/US", "Paris/US"}, names(combined))
	assert.True(t, combined.Equal(chained))
}

func TestFilter_DoesNotMutateReceiver(t *testing.T) {
	set := fixtureSet(t)
	before := names(set)

	_, err := set.Filter(Where(FieldCountryCode, "US"))
	require.NoError(t, err)
	assert.Equal(t, before, names(set))
}

func TestFilter_RawNumericNeverMatches(t *testing.T) {
	tokens := strings.Split(rowParis, "\t")
	tokens[14] = "lots"
	set := NewCitySet(ParseCity(tokens), parseRow(t, rowLondon))

	got, err := set.Filter(Where(FieldPopulation, "!= 0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"London/GB"}, names(got))
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in      string
		want    Condition
		wantErr bool
	}{
		{in: "name=paris", want: Where("name", "paris")},
		{in: "latitude=< -30", want: Where("latitude", "< -30")},
		{in: "population==0", want: Where("population", "=0")},
		{in: " country_code =FR", want: Where("country_code", "FR")},
		{in: "name=", want: Where("name", "")},
		{in: "name", wantErr: true},
		{in: "=paris", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCondition(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFilter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCondition_FiltersLikeWhere(t *testing.T) {
	set := fixtureSet(t)
	cond, err := ParseCondition("latitude=< -30")
	require.NoError(t, err)

	got, err := set.Filter(cond)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sydney/AU"}, names(got))
}

func TestClosestField(t *testing.T) {
	assert.Equal(t, "population", closestField("Populaton"))
	assert.Equal(t, "country_code", closestField("countrycode"))
	assert.Equal(t, "", closestField("something entirely different"))
}
