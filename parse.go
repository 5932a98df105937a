package allcities

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// maxLineSize bounds one dump row. alternatenames alone may hold 10000
// characters, well past bufio's 64K default once multi-byte runes appear.
const maxLineSize = 1 << 20

// ParseCities reads a cities1000.txt stream: one tab separated row per
// line. Blank lines are skipped; malformed rows degrade into partially
// populated cities. Cities are returned in input order. The only error is
// a failure of the underlying reader.
func ParseCities(r io.Reader) ([]City, error) {
	return parseCities(r, logger())
}

func parseCities(r io.Reader, log *zap.SugaredLogger) ([]City, error) {
	pool := newStringPool(8192)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var cities []City
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		cities = append(cities, parseCity(strings.Split(text, "\t"), log, pool, line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading line %d", line+1)
	}

	log.Debugw("parsed cities",
		"cities", len(cities),
		"lines", line,
		"pooled_strings", pool.count(),
	)
	return cities, nil
}
