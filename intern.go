package allcities

// stringPool deduplicates repeated column values (country codes, feature
// codes, timezones) while bulk loading so ~150K cities share one backing
// string per distinct value. Not safe for concurrent use; each load owns
// its pool. A nil pool interns nothing.
type stringPool struct {
	m map[string]string
}

func newStringPool(capacity int) *stringPool {
	return &stringPool{m: make(map[string]string, capacity)}
}

func (p *stringPool) intern(s string) string {
	if p == nil || s == "" {
		return s
	}
	if v, ok := p.m[s]; ok {
		return v
	}
	p.m[s] = s
	return s
}

// count returns the number of distinct pooled values.
func (p *stringPool) count() int {
	if p == nil {
		return 0
	}
	return len(p.m)
}
