// Package cache provides pluggable caching for conversion results.
//
// Conversion of the same flow with the same options is deterministic, so
// parsed graphs, fragment sets, and emitted artifacts are all cached by
// content hash. Backends:
//
//   - FileCache: directory-backed, for CLI usage
//   - RedisCache: shared cache for the conversion server
//   - MongoCache: durable cache with TTL indexes
//   - NullCache: disables caching
//
// Key construction is centralized in [Keyer] so every backend sees the
// same key space; [ScopedKeyer] adds a prefix for multi-tenant
// deployments.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry class. Graphs are keyed by content hash so they
// never go stale; the TTLs only bound storage growth.
const (
	TTLGraph     = 24 * time.Hour
	TTLFragments = 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
)

// Cache is the storage contract shared by all backends. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports a hit; a miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no
	// expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts distinguishes parsed-graph cache entries.
type GraphKeyOpts struct {
	// SchemaVersion invalidates entries when the IR serialization
	// changes shape.
	SchemaVersion int
}

// FragmentsKeyOpts distinguishes conversion-result cache entries. Every
// field that changes generated output must appear here.
type FragmentsKeyOpts struct {
	Language        string
	IncludeComments bool
	IncludeTracing  bool
}

// ArtifactKeyOpts distinguishes emitted-artifact cache entries.
type ArtifactKeyOpts struct {
	Language    string
	ProjectName string
}

// Keyer centralizes cache key construction so all backends and callers
// agree on the key space.
type Keyer interface {
	// GraphKey keys a parsed IR graph by the flow export's content hash.
	GraphKey(flowHash string, opts GraphKeyOpts) string

	// FragmentsKey keys a conversion result by graph hash and generation
	// options.
	FragmentsKey(flowHash string, opts FragmentsKeyOpts) string

	// ArtifactKey keys emitted artifacts by graph hash and emit options.
	ArtifactKey(flowHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for parsed-graph caching.
func (k *DefaultKeyer) GraphKey(flowHash string, opts GraphKeyOpts) string {
	return hashKey("graph", flowHash, opts)
}

// FragmentsKey generates a key for conversion-result caching.
func (k *DefaultKeyer) FragmentsKey(flowHash string, opts FragmentsKeyOpts) string {
	return hashKey("fragments", flowHash, opts)
}

// ArtifactKey generates a key for emitted-artifact caching.
func (k *DefaultKeyer) ArtifactKey(flowHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", flowHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
