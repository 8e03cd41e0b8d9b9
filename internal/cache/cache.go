// Package cache stores geocoding results so repeated runs over the same
// GEDCOM file do not re-query the geocoding service. Keys are derived
// from normalized place text; values are small JSON blobs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a place name. The text is lowercased
// and whitespace-collapsed first so trivially different spellings of the
// same place share an entry.
func Key(place string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(place)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return "gedfilter:v1:" + hex.EncodeToString(hash[:])
}
