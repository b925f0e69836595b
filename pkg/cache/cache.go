// Package cache stores rendered board artifacts.
//
// Renders are keyed by a hash of the exported layout and the render
// options, so an unchanged board is never rendered twice. Three backends
// implement [Cache]:
//
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for the HTTP server, shared between instances
//   - [NullCache] when caching is disabled (--no-cache)
//
// Keys come from a [Keyer]; [ScopedKeyer] prefixes them for multi-tenant
// isolation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live values.
const (
	// TTLRender is the lifetime of a rendered artifact. Keys are content
	// hashes, so this only bounds disk usage.
	TTLRender = 7 * 24 * time.Hour
)

// RenderKeyOpts are the render options that change an artifact's bytes.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Target string `json:"target,omitempty"`
	Styled bool   `json:"styled,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// RenderKey returns the key of an artifact rendered from a layout.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey hashes the layout hash together with the options.
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}
