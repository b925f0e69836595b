package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/cache"
	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/layout"
	"github.com/matzehuels/dashgrid/pkg/observability"
)

// Runner encapsulates rendering with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different boards.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// RenderWithCacheInfo renders b with caching and reports whether every
// artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b *board.Board, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	// The configuration is part of the key: bounds change the rendered
	// dimensions even when no widget moved.
	boardHash, err := cache.HashJSON(struct {
		Config config.Board  `json:"config"`
		Layout layout.Layout `json:"layout"`
	}{b.Config(), b.Export()})
	if err != nil {
		return nil, false, fmt.Errorf("hash board for cache key: %w", err)
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(boardHash, r.keyOpts(opts, format))
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "render")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "render")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		r.Logger.Debug("render cache hit", "board", b.Name(), "formats", opts.Formats)
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, b, renderOpts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.RenderKey(boardHash, r.keyOpts(opts, format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}

	r.Logger.Info("rendered board",
		"board", b.Name(),
		"formats", missing,
		"duration", time.Since(start))
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, b *board.Board, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, b, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) keyOpts(opts Options, format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{Format: format, Target: opts.Target, Styled: opts.Styled}
}
