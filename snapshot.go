package allcities

import (
	"bufio"
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

const (
	// SnapshotFile is the name of the compressed snapshot inside the data directory.
	SnapshotFile = "cities1000.gob.gz"

	lastUpdateFile = "last_update"
)

// cityGob is the on-disk form of a City. Unlike City it exposes the
// missing and raw markers so they survive a round trip.
type cityGob struct {
	GeonameID        int64
	Name             string
	ASCIIName        string
	AlternateNames   []string
	Latitude         float64
	Longitude        float64
	FeatureClass     string
	FeatureCode      string
	CountryCode      string
	CC2              string
	Admin1Code       string
	Admin2Code       string
	Admin3Code       string
	Admin4Code       string
	Population       int64
	Elevation        int64
	DEM              int64
	Timezone         string
	ModificationDate string
	Missing          uint32
	Raw              map[string]string
}

func toGob(c City) cityGob {
	return cityGob{
		GeonameID:        c.GeonameID,
		Name:             c.Name,
		ASCIIName:        c.ASCIIName,
		AlternateNames:   c.AlternateNames,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		FeatureClass:     c.FeatureClass,
		FeatureCode:      c.FeatureCode,
		CountryCode:      c.CountryCode,
		CC2:              c.CC2,
		Admin1Code:       c.Admin1Code,
		Admin2Code:       c.Admin2Code,
		Admin3Code:       c.Admin3Code,
		Admin4Code:       c.Admin4Code,
		Population:       c.Population,
		Elevation:        c.Elevation,
		DEM:              c.DEM,
		Timezone:         c.Timezone,
		ModificationDate: c.ModificationDate,
		Missing:          c.missing,
		Raw:              c.raw,
	}
}

func fromGob(g cityGob, pool *stringPool) City {
	c := City{
		GeonameID:        g.GeonameID,
		Name:             g.Name,
		ASCIIName:        g.ASCIIName,
		AlternateNames:   g.AlternateNames,
		Latitude:         g.Latitude,
		Longitude:        g.Longitude,
		Population:       g.Population,
		Elevation:        g.Elevation,
		DEM:              g.DEM,
		Admin3Code:       g.Admin3Code,
		Admin4Code:       g.Admin4Code,
		missing:          g.Missing,
		raw:              g.Raw,
		FeatureClass:     pool.intern(g.FeatureClass),
		FeatureCode:      pool.intern(g.FeatureCode),
		CountryCode:      pool.intern(g.CountryCode),
		CC2:              pool.intern(g.CC2),
		Admin1Code:       pool.intern(g.Admin1Code),
		Admin2Code:       pool.intern(g.Admin2Code),
		Timezone:         pool.intern(g.Timezone),
		ModificationDate: pool.intern(g.ModificationDate),
	}
	if len(c.raw) == 0 {
		c.raw = nil
	}
	if len(c.AlternateNames) == 0 {
		c.AlternateNames = nil
	}
	return c
}

// SaveSnapshot writes cities to path as gzip-compressed gob.
//
// The file is written to path+".new" first. An existing snapshot is moved
// to path+".old" and only removed once the new file is in place; if the
// final rename fails the old snapshot is moved back. Readers never observe
// a partially written snapshot.
func SaveSnapshot(path string, cities []City) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating snapshot directory")
	}

	newPath, oldPath := path+".new", path+".old"
	if err := writeSnapshotFile(newPath, cities); err != nil {
		os.Remove(newPath) // best-effort cleanup of partial file
		return err
	}

	hadOld := false
	if _, err := os.Stat(path); err == nil {
		os.Remove(oldPath)
		if err := os.Rename(path, oldPath); err != nil {
			os.Remove(newPath)
			return errors.Wrap(err, "moving previous snapshot aside")
		}
		hadOld = true
	}

	if err := os.Rename(newPath, path); err != nil {
		if hadOld {
			if rbErr := os.Rename(oldPath, path); rbErr != nil {
				err = errors.WithSecondaryError(err, rbErr)
			}
		}
		os.Remove(newPath)
		return errors.Wrap(err, "replacing snapshot")
	}

	if hadOld {
		os.Remove(oldPath)
	}
	return nil
}

func writeSnapshotFile(path string, cities []City) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer out.Close()

	gobCities := make([]cityGob, len(cities))
	for i, c := range cities {
		gobCities[i] = toGob(c)
	}

	bw := bufio.NewWriter(out)
	zw := gzip.NewWriter(bw)
	if err := gob.NewEncoder(zw).Encode(gobCities); err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "compressing snapshot")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := out.Sync(); err != nil {
		return errors.Wrapf(err, "syncing %s", path)
	}
	// Explicitly close to catch flush errors (e.g., on NFS)
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. A missing file
// yields an error matching fs.ErrNotExist.
func LoadSnapshot(path string) ([]City, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening snapshot")
	}
	defer fh.Close()

	zr, err := gzip.NewReader(bufio.NewReader(fh))
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %s", path)
	}
	defer zr.Close()

	var gobCities []cityGob
	if err := gob.NewDecoder(zr).Decode(&gobCities); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	pool := newStringPool(8192)
	cities := make([]City, len(gobCities))
	for i, gc := range gobCities {
		cities[i] = fromGob(gc, pool)
	}
	return cities, nil
}

// WriteLastUpdate records t as the time of the last successful update in dir.
func WriteLastUpdate(dir string, t time.Time) error {
	path := filepath.Join(dir, lastUpdateFile)
	tmp := path + ".new"
	if err := os.WriteFile(tmp, []byte(t.UTC().Format(time.RFC3339)+"\n"), 0644); err != nil {
		return errors.Wrap(err, "writing last update stamp")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "replacing last update stamp")
	}
	return nil
}

// LastUpdate returns the time recorded by WriteLastUpdate in dir.
func LastUpdate(dir string) (time.Time, error) {
	b, err := os.ReadFile(filepath.Join(dir, lastUpdateFile))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "reading last update stamp")
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(b)))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parsing last update stamp")
	}
	return t, nil
}
