package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from an arbitrary input
func Key(namespace, input string) string {
	hash := sha256.Sum256([]byte(input))
	return "dispatcher:" + namespace + ":v1:" + hex.EncodeToString(hash[:])
}
