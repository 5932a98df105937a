package allcities

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
)

// CitySet is an unordered set of cities, deduplicated by structural
// equality. Every operation returns a new CitySet and leaves the receiver
// untouched, so a set can be shared freely between goroutines. A nil
// *CitySet behaves as an empty set.
type CitySet struct {
	m map[string]City

	keysOnce sync.Once
	keys     []string // sorted member keys, built on first random pick
}

// NewCitySet builds a set from cities; duplicates collapse into one member.
func NewCitySet(cities ...City) *CitySet {
	m := make(map[string]City, len(cities))
	for _, c := range cities {
		m[c.key()] = c
	}
	return &CitySet{m: m}
}

func (s *CitySet) members() map[string]City {
	if s == nil {
		return nil
	}
	return s.m
}

// Len returns the number of cities in the set.
func (s *CitySet) Len() int { return len(s.members()) }

// Contains reports whether c is a member.
func (s *CitySet) Contains(c City) bool {
	_, ok := s.members()[c.key()]
	return ok
}

// All iterates the members in no particular order.
func (s *CitySet) All() iter.Seq[City] {
	return maps.Values(s.members())
}

// Slice returns the members in no particular order.
func (s *CitySet) Slice() []City {
	return slices.Collect(s.All())
}

// Sorted returns the members ordered by geonameid, then name.
func (s *CitySet) Sorted() []City {
	out := s.Slice()
	slices.SortFunc(out, func(a, b City) int {
		if c := cmp.Compare(a.GeonameID, b.GeonameID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.key(), b.key())
	})
	return out
}

// Copy returns a new set with the same members.
func (s *CitySet) Copy() *CitySet {
	return &CitySet{m: maps.Clone(s.members())}
}

// Union returns the cities in s or in any of others.
func (s *CitySet) Union(others ...*CitySet) *CitySet {
	out := s.Copy()
	if out.m == nil {
		out.m = make(map[string]City)
	}
	for _, o := range others {
		maps.Copy(out.m, o.members())
	}
	return out
}

// Intersection returns the cities present in s and in every one of others.
func (s *CitySet) Intersection(others ...*CitySet) *CitySet {
	out := make(map[string]City)
next:
	for k, c := range s.members() {
		for _, o := range others {
			if _, ok := o.members()[k]; !ok {
				continue next
			}
		}
		out[k] = c
	}
	return &CitySet{m: out}
}

// Difference returns the cities in s that are in none of others.
func (s *CitySet) Difference(others ...*CitySet) *CitySet {
	out := make(map[string]City)
next:
	for k, c := range s.members() {
		for _, o := range others {
			if _, ok := o.members()[k]; ok {
				continue next
			}
		}
		out[k] = c
	}
	return &CitySet{m: out}
}

// SymmetricDifference returns the cities in exactly one of s and o.
func (s *CitySet) SymmetricDifference(o *CitySet) *CitySet {
	out := make(map[string]City)
	for k, c := range s.members() {
		if _, ok := o.members()[k]; !ok {
			out[k] = c
		}
	}
	for k, c := range o.members() {
		if _, ok := s.members()[k]; !ok {
			out[k] = c
		}
	}
	return &CitySet{m: out}
}

// IsSubset reports whether every member of s is also in o.
func (s *CitySet) IsSubset(o *CitySet) bool {
	if s.Len() > o.Len() {
		return false
	}
	for k := range s.members() {
		if _, ok := o.members()[k]; !ok {
			return false
		}
	}
	return true
}

// IsDisjoint reports whether s and o have no member in common.
func (s *CitySet) IsDisjoint(o *CitySet) bool {
	small, large := s.members(), o.members()
	if len(small) > len(large) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			return false
		}
	}
	return true
}

// Equal reports whether s and o have the same members.
func (s *CitySet) Equal(o *CitySet) bool {
	return s.Len() == o.Len() && s.IsSubset(o)
}

// Random returns a uniformly chosen member. It fails with ErrEmptySet
// when the set is empty.
func (s *CitySet) Random() (City, error) {
	return s.pick(rand.IntN)
}

// RandomWith is Random driven by r, for reproducible picks.
func (s *CitySet) RandomWith(r *rand.Rand) (City, error) {
	return s.pick(r.IntN)
}

func (s *CitySet) pick(intN func(int) int) (City, error) {
	keys := s.sortedKeys()
	if len(keys) == 0 {
		return City{}, ErrEmptySet
	}
	return s.m[keys[intN(len(keys))]], nil
}

// sortedKeys returns the member keys in order. Map order is unspecified, so
// picks index this slice to make RandomWith reproducible for a given seed.
// The set never changes, so the slice is built once and shared.
func (s *CitySet) sortedKeys() []string {
	if s == nil {
		return nil
	}
	s.keysOnce.Do(func() {
		s.keys = slices.Sorted(maps.Keys(s.m))
	})
	return s.keys
}

func (s *CitySet) String() string {
	return fmt.Sprintf("<CitySet (%d)>", s.Len())
}
