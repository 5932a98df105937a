package allcities

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var pkgLogger atomic.Pointer[zap.SugaredLogger]

func init() {
	// No-op until SetLogger is called so library users get silence by default.
	pkgLogger.Store(zap.NewNop().Sugar())
}

// SetLogger replaces the logger used by ParseCity and ParseCities.
// A nil logger restores the no-op default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l.Named("allcities").Sugar())
}

func logger() *zap.SugaredLogger {
	return pkgLogger.Load()
}
