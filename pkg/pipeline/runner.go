package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/graph"
	strataio "github.com/matzehuels/strata/pkg/io"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
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

// Layout lays out g, reusing a cached result when the same graph was laid
// out with the same options before. The second result reports a cache hit.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts layout.Options) (*layout.Result, bool, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	var canonical bytes.Buffer
	if err := strataio.WriteGraph(g, &canonical); err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	key := r.Keyer.LayoutKey(cache.Hash(canonical.Bytes()), LayoutKeyOpts(&opts))

	if data, hit := r.get(ctx, key); hit {
		if res, err := strataio.ReadResult(bytes.NewReader(data)); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return res, true, nil
		}
		// undecodable entries are recomputed and overwritten
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	res, err := layout.Layout(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}

	var out bytes.Buffer
	if err := strataio.WriteResult(res, &out); err == nil {
		r.set(ctx, "layout", key, out.Bytes(), cache.TTLLayout)
	}
	return res, false, nil
}

// Render produces an artifact for res, reusing a cached one when possible.
func (r *Runner) Render(ctx context.Context, res *layout.Result, opts RenderOptions) ([]byte, bool, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}

	var canonical bytes.Buffer
	if err := strataio.WriteResult(res, &canonical); err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(canonical.Bytes()), opts.keyOpts())

	if data, hit := r.get(ctx, key); hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	data, err := Render(ctx, res, opts)
	if err != nil {
		return nil, false, err
	}
	r.set(ctx, "artifact", key, data, cache.TTLArtifact)
	return data, false, nil
}

// get treats cache failures as misses; a broken cache slows the pipeline
// down but never fails it.
func (r *Runner) get(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
