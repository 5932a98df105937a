package allcities

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Condition is one field=value pair of a filter.
//
// Text and list fields match when the value is a case-insensitive
// substring of the field (of any element, for alternatenames). Both sides
// are case folded and NFC normalized, so "SÃO" finds "São Paulo" whether
// the accent is precomposed or not. Numeric
// fields take a comparison such as "> 50000", "<= -33.5" or "!= 0".
type Condition struct {
	Field string
	Value string
}

// Where builds a Condition.
func Where(field, value string) Condition {
	return Condition{Field: field, Value: value}
}

// ParseCondition parses the "field=value" form used on the command line.
// Only the first '=' separates field from value, so "population==0" reads
// as field population with value "=0".
func ParseCondition(s string) (Condition, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Condition{}, &FilterError{Field: s, Reason: `expected "field=value"`}
	}
	return Condition{Field: name, Value: value}, nil
}

// comparisonPattern is "<operator><optional whitespace><number>".
var comparisonPattern = regexp.MustCompile(`^\s*([!<>=]{1,2})\s*([+-]?(?:\d+(?:\.\d*)?|\.\d+))\s*$`)

var comparators = map[string]func(a, b float64) bool{
	"<":  func(a, b float64) bool { return a < b },
	"<=": func(a, b float64) bool { return a <= b },
	"==": func(a, b float64) bool { return a == b },
	"=":  func(a, b float64) bool { return a == b },
	"!=": func(a, b float64) bool { return a != b },
	">":  func(a, b float64) bool { return a > b },
	">=": func(a, b float64) bool { return a >= b },
}

// maxFieldSuggestDistance caps the edit distance for "did you mean" hints.
const maxFieldSuggestDistance = 3

type predicate func(*City) bool

// Filter returns the members of s satisfying every condition.
//
// All conditions are validated before any city is examined, so an unknown
// field or a malformed comparison fails even on an empty set. Errors match
// ErrInvalidFilter.
//
// A numeric field that is zero or missing never satisfies a comparison,
// "!= 0" included.
func (s *CitySet) Filter(conds ...Condition) (*CitySet, error) {
	preds, err := compileConditions(conds)
	if err != nil {
		return nil, err
	}

	out := make(map[string]City)
next:
	for k, c := range s.members() {
		for _, p := range preds {
			if !p(&c) {
				continue next
			}
		}
		out[k] = c
	}
	return &CitySet{m: out}, nil
}

func compileConditions(conds []Condition) ([]predicate, error) {
	// A Caser keeps state between calls; one per Filter call keeps
	// concurrent filters on a shared set independent.
	fold := cases.Fold()
	preds := make([]predicate, 0, len(conds))
	for _, cond := range conds {
		f, ok := schemaIndex[cond.Field]
		if !ok {
			return nil, unknownFieldError(cond)
		}
		var (
			p   predicate
			err error
		)
		switch f.kind {
		case kindText, kindList:
			p = containsPredicate(f, fold, cond.Value)
		case kindInt, kindFloat:
			p, err = comparePredicate(f, cond)
		}
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func containsPredicate(f *field, fold cases.Caser, value string) predicate {
	canon := func(s string) string { return norm.NFC.String(fold.String(s)) }
	needle := canon(value)
	if needle == "" {
		// Every string contains "", including the cities with no
		// alternate names at all.
		return func(*City) bool { return true }
	}
	if f.kind == kindList {
		return func(c *City) bool {
			for _, v := range *f.list(c) {
				if strings.Contains(canon(v), needle) {
					return true
				}
			}
			return false
		}
	}
	return func(c *City) bool {
		return strings.Contains(canon(*f.text(c)), needle)
	}
}

func comparePredicate(f *field, cond Condition) (predicate, error) {
	m := comparisonPattern.FindStringSubmatch(cond.Value)
	if m == nil {
		return nil, errors.WithHint(
			&FilterError{Field: cond.Field, Value: cond.Value, Reason: "numeric comparisons must be in the form \"[operator] [value]\""},
			`e.g. "> 5", "<= -33.8", "!= 0"`,
		)
	}
	compare, ok := comparators[m[1]]
	if !ok {
		return nil, errors.WithHint(
			&FilterError{Field: cond.Field, Value: cond.Value, Reason: "unknown operator " + strconv.Quote(m[1]), badOperator: true},
			"valid operators are <, <=, ==, =, !=, >, >=",
		)
	}
	want, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, &FilterError{Field: cond.Field, Value: cond.Value, Reason: err.Error()}
	}

	return func(c *City) bool {
		v, ok := f.numericValue(c)
		if !ok || v == 0 {
			return false
		}
		return compare(v, want)
	}, nil
}

func unknownFieldError(cond Condition) error {
	var err error = &FilterError{Field: cond.Field, Reason: "not a valid property"}
	if s := closestField(cond.Field); s != "" {
		err = errors.WithHintf(err, "did you mean %q?", s)
	}
	return err
}

// closestField suggests the schema field nearest to name by edit distance.
func closestField(name string) string {
	best, bestDist := "", maxFieldSuggestDistance+1
	lower := strings.ToLower(name)
	for _, f := range schema {
		d := levenshtein.ComputeDistance(lower, f.name)
		if d < bestDist {
			best, bestDist = f.name, d
		}
	}
	return best
}
