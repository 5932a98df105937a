// Package allcities gives in-memory query access to every city of the
// world with a population of at least 1000, from the GeoNames
// cities1000 dump.
//
// A Store loads the local snapshot on start, downloading the dump once when
// no snapshot exists:
//
//	store, err := allcities.Open(ctx, allcities.WithDataDir("/var/lib/allcities"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paris, err := store.Cities().
//	    Filter(allcities.Where("name", "paris"), allcities.Where("country_code", "FR"))
//
// Filters and set operations never modify their receiver; each returns a
// new CitySet.
package allcities

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Config contains configuration options for a Store.
type Config struct {
	DataDir     string        // Directory holding the snapshot (default: "./allcities-data")
	UpdateURL   string        // Archive to download on update (default: DefaultUpdateURL)
	HTTPTimeout time.Duration // Per download attempt (default: 5m)
	Attempts    int           // Download attempts per update (default: 3)
	RetryDelay  time.Duration // Backoff before the first retry (default: 1s)
	MinCities   int           // Reject updates parsing fewer cities (default: 1)
	AutoUpdate  bool          // Download when no snapshot exists (default: true)
	Logger      *zap.Logger   // Lifecycle and parse anomaly logs (default: package logger)

	ReloadDebounce time.Duration // Quiet period before Watch reloads (default: 500ms)
}

// Option is a functional option for configuring a Store.
type Option func(*Config)

// WithDataDir sets the directory holding the snapshot.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithUpdateURL sets the archive downloaded by Update.
func WithUpdateURL(url string) Option {
	return func(c *Config) {
		c.UpdateURL = url
	}
}

// WithHTTPTimeout bounds each download attempt.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = d
	}
}

// WithRetries sets the number of download attempts and the initial backoff.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Config) {
		c.Attempts = attempts
		c.RetryDelay = delay
	}
}

// WithMinCities rejects updates that parse fewer than n cities.
func WithMinCities(n int) Option {
	return func(c *Config) {
		c.MinCities = n
	}
}

// WithoutAutoUpdate makes Open fail instead of downloading when no
// snapshot exists.
func WithoutAutoUpdate() Option {
	return func(c *Config) {
		c.AutoUpdate = false
	}
}

// WithReloadDebounce sets how long Watch waits for snapshot writes to
// settle before reloading.
func WithReloadDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.ReloadDebounce = d
	}
}

// WithLogger sets the logger for the store and its updates.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		DataDir:     "./allcities-data",
		UpdateURL:   DefaultUpdateURL,
		HTTPTimeout: 5 * time.Minute,
		Attempts:    3,
		RetryDelay:  time.Second,
		MinCities:   1,
		AutoUpdate:  true,

		ReloadDebounce: 500 * time.Millisecond,
	}
}

// updateMu serializes updates and reloads across stores sharing a data
// directory in this process, so two goroutines never write the snapshot
// at once.
var updateMu sync.Mutex

// Store publishes the current CitySet. Readers call Cities; Update and
// Reload swap in a new set atomically. Safe for concurrent use.
type Store struct {
	cfg *Config
	log *zap.SugaredLogger

	mu      sync.RWMutex
	cities  *CitySet
	updated time.Time
}

// NewStore returns a Store with nothing published yet; Cities returns nil
// until Reload or Update succeeds.
func NewStore(opts ...Option) *Store {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Store{cfg: cfg, log: logger()}
	if cfg.Logger != nil {
		s.log = cfg.Logger.Named("allcities").Sugar()
	}
	return s
}

// Open loads the snapshot from the data directory. When none exists and
// AutoUpdate is on, it downloads the dump once; if that fails the error
// is returned.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	s := NewStore(opts...)
	cfg := s.cfg

	err := s.Reload()
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || !cfg.AutoUpdate {
		return nil, err
	}

	s.log.Warnw("unable to locate data file, downloading update",
		"snapshot", s.SnapshotPath(),
	)
	if err := s.Update(ctx); err != nil {
		s.log.Errorw("unable to download data", "error", err)
		return nil, errors.Wrap(err, "bootstrapping city data")
	}
	return s, nil
}

// Cities returns the published set.
func (s *Store) Cities() *CitySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cities
}

// LastUpdate returns when the published data was last downloaded. The
// zero time means unknown.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// SnapshotPath returns the snapshot file location.
func (s *Store) SnapshotPath() string {
	return filepath.Join(s.cfg.DataDir, SnapshotFile)
}

// Reload replaces the published set with the snapshot on disk. On error
// the published set is left unchanged.
func (s *Store) Reload() error {
	updateMu.Lock()
	defer updateMu.Unlock()

	cities, err := LoadSnapshot(s.SnapshotPath())
	if err != nil {
		return err
	}
	updated, err := LastUpdate(s.cfg.DataDir)
	if err != nil {
		s.log.Debugw("no last update stamp", "error", err)
	}
	s.publish(NewCitySet(cities...), updated)
	s.log.Infow("loaded snapshot",
		"cities", len(cities),
		"snapshot", s.SnapshotPath(),
	)
	return nil
}

// Update downloads the dump, replaces the snapshot and publishes the new
// set. On failure the snapshot on disk and the published set are
// unchanged.
func (s *Store) Update(ctx context.Context) error {
	updateMu.Lock()
	defer updateMu.Unlock()

	set, err := newUpdater(s.cfg, s.log).Run(ctx)
	if err != nil {
		return err
	}
	updated, err := LastUpdate(s.cfg.DataDir)
	if err != nil {
		updated = time.Now()
	}
	s.publish(set, updated)
	return nil
}

func (s *Store) publish(set *CitySet, updated time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = set
	s.updated = updated
}

// Singleton pattern for the default Store.
var (
	defaultStore     *Store
	defaultStoreOnce sync.Once
	defaultStoreErr  error
)

// Default returns a shared Store using the default configuration,
// opening it on first call.
func Default() (*Store, error) {
	defaultStoreOnce.Do(func() {
		defaultStore, defaultStoreErr = Open(context.Background())
	})
	return defaultStore, defaultStoreErr
}
