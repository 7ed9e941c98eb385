// Package cache provides time-limited document caches for the SOAP
// transport. WSDL and schema documents rarely change, so fetching them once
// per TTL keeps client construction cheap.
//
// Two backends are provided: SQLiteCache, a local file shared by all
// processes of one user, and RedisCache, shared across hosts.
package cache

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a cached document stays valid.
const DefaultTTL = time.Hour

// DefaultPath returns the default SQLite cache location under the user's
// cache directory, falling back to the temp directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "go-obiee", "cache.db")
}
