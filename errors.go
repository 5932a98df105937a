package allcities

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidFilter is matched by every malformed-condition error
	// returned from Filter.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrInvalidOperator is matched when a numeric condition uses an
	// unknown comparator. It is also an ErrInvalidFilter.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrEmptySet is returned when picking a member of an empty CitySet.
	ErrEmptySet = errors.New("empty city set")
)

// FilterError describes a rejected filter condition.
type FilterError struct {
	Field  string // field name as given by the caller
	Value  string // condition value as given by the caller
	Reason string

	badOperator bool
}

func (e *FilterError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid filter %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid filter %s=%q: %s", e.Field, e.Value, e.Reason)
}

// Is makes every FilterError match ErrInvalidFilter, and operator errors
// match ErrInvalidOperator as well.
func (e *FilterError) Is(target error) bool {
	switch target {
	case ErrInvalidFilter:
		return true
	case ErrInvalidOperator:
		return e.badOperator
	}
	return false
}
