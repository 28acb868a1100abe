// Package cache stores computed layouts and rendered artifacts by content
// hash.
//
// The same graph and options always yield the same layout, so results can be
// cached under a key derived from the graph's canonical JSON and the options
// that affect the drawing. The CLI uses [FileCache] under the user cache
// directory; the server uses [RedisCache] when given an address. [NullCache]
// disables caching.
//
// Keys are built by a [Keyer]. [ScopedKeyer] adds a prefix so that several
// deployments can share one Redis instance.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is a
	// miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Default lifetimes of cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of the graph with the given hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendering of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every layout option that changes the drawing. Runtime
// settings such as the logger and parallelism do not belong here.
type LayoutKeyOpts struct {
	Direction          string  `json:"direction"`
	Routing            string  `json:"routing"`
	CycleBreaking      string  `json:"cycle_breaking"`
	Layering           string  `json:"layering"`
	Ordering           string  `json:"ordering"`
	NodeSpacing        float64 `json:"node_spacing"`
	LayerSpacing       float64 `json:"layer_spacing"`
	EdgeSpacing        float64 `json:"edge_spacing"`
	Iterations         int     `json:"iterations"`
	Restarts           int     `json:"restarts"`
	Seed               uint64  `json:"seed"`
	FixedPortOrder     bool    `json:"fixed_port_order"`
	SeparateComponents bool    `json:"separate_components"`
	MinNodeSize        float64 `json:"min_node_size"`
}

// ArtifactKeyOpts holds the render settings of an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Ports    bool   `json:"ports"`
	Detailed bool   `json:"detailed"`
}

// NullCache misses on every lookup and drops every write. Runners fall back
// to it when caching is off.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
