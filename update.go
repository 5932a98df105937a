package allcities

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"
)

// DefaultUpdateURL is the GeoNames export of all cities with a population >= 1000.
const DefaultUpdateURL = "https://download.geonames.org/export/dump/cities1000.zip"

// maxRetryDelay caps the exponential backoff between download attempts.
const maxRetryDelay = 30 * time.Second

// Updater downloads the GeoNames dump, parses it and replaces the snapshot.
// A failed run leaves the existing snapshot untouched.
type Updater struct {
	URL        string        // archive URL; go-getter extracts .zip sources
	Dir        string        // data directory holding the snapshot
	Timeout    time.Duration // per download attempt, 0 for none
	Attempts   int           // download attempts, at least 1
	RetryDelay time.Duration // delay before the second attempt, doubled after each failure
	MinCities  int           // reject dumps with fewer parsed cities
	Log        *zap.SugaredLogger
}

func newUpdater(cfg *Config, log *zap.SugaredLogger) *Updater {
	return &Updater{
		URL:        cfg.UpdateURL,
		Dir:        cfg.DataDir,
		Timeout:    cfg.HTTPTimeout,
		Attempts:   cfg.Attempts,
		RetryDelay: cfg.RetryDelay,
		MinCities:  cfg.MinCities,
		Log:        log,
	}
}

func (u *Updater) log() *zap.SugaredLogger {
	if u.Log == nil {
		return logger()
	}
	return u.Log
}

// Run performs one update and returns the freshly persisted set.
func (u *Updater) Run(ctx context.Context) (*CitySet, error) {
	log := u.log()

	tmp, err := os.MkdirTemp("", "allcities-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating temp directory")
	}
	defer os.RemoveAll(tmp)

	extractDir := filepath.Join(tmp, "extract")
	if err := u.fetchWithRetry(ctx, extractDir); err != nil {
		return nil, err
	}

	txt, err := findDumpFile(extractDir)
	if err != nil {
		return nil, err
	}
	log.Infow("download complete, parsing data", "file", filepath.Base(txt))

	fh, err := os.Open(txt)
	if err != nil {
		return nil, errors.Wrap(err, "opening extracted dump")
	}
	cities, err := parseCities(fh, log)
	fh.Close()
	if err != nil {
		return nil, errors.Wrap(err, "parsing dump")
	}
	if len(cities) < max(u.MinCities, 1) {
		return nil, errors.Newf("dump has %d cities, want at least %d", len(cities), max(u.MinCities, 1))
	}

	path := filepath.Join(u.Dir, SnapshotFile)
	if err := SaveSnapshot(path, cities); err != nil {
		return nil, errors.Wrap(err, "persisting snapshot")
	}
	if err := WriteLastUpdate(u.Dir, time.Now()); err != nil {
		// The snapshot itself is in place; a stale stamp is only cosmetic.
		log.Warnw("failed to record update time", "error", err)
	}

	log.Infow("update complete",
		"cities", len(cities),
		"snapshot", path,
	)
	return NewCitySet(cities...), nil
}

// fetchWithRetry retries the download with exponential backoff until it
// succeeds, attempts run out or ctx is done.
func (u *Updater) fetchWithRetry(ctx context.Context, dst string) error {
	log := u.log()
	attempts := max(u.Attempts, 1)
	delay := u.RetryDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		os.RemoveAll(dst) // start each attempt from an empty directory
		lastErr = u.fetch(ctx, dst)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		log.Warnw("download failed",
			"url", u.URL,
			"attempt", attempt,
			"attempts", attempts,
			"error", lastErr,
		)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting to retry download")
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
	return errors.Wrapf(lastErr, "downloading %s", u.URL)
}

func (u *Updater) fetch(ctx context.Context, dst string) error {
	if u.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.Timeout)
		defer cancel()
	}

	u.log().Infow("downloading update", "url", u.URL)
	client := &getter.Client{
		Ctx:     ctx,
		Src:     u.URL,
		Dst:     dst,
		Mode:    getter.ClientModeDir,
		Getters: getter.Getters,
	}
	return client.Get()
}

// findDumpFile locates the extracted cities*.txt, falling back to any .txt.
func findDumpFile(dir string) (string, error) {
	for _, pattern := range []string{"cities*.txt", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", errors.Wrap(err, "searching extracted files")
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], nil
		}
	}
	return "", errors.Newf("no .txt file found in archive from %s", dir)
}
