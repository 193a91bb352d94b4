package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyshuffle/pkg/cache"
	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/manuscript"
	"github.com/matzehuels/storyshuffle/pkg/observability"
	"github.com/matzehuels/storyshuffle/pkg/render"
	"github.com/matzehuels/storyshuffle/pkg/section"
	"github.com/matzehuels/storyshuffle/pkg/shuffle"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
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

// Scoped returns a runner whose cache keys carry the given prefix, sharing
// the backend and logger. The server scopes each workspace's shuffles this
// way so edits to one workspace never serve stale results to another.
func (r *Runner) Scoped(prefix string) *Runner {
	return &Runner{
		Cache:  r.Cache,
		Keyer:  cache.NewScopedKeyer(r.Keyer, prefix),
		Logger: r.Logger,
	}
}

// Execute runs the complete split → validate → shuffle → join pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	result := &Result{Seed: opts.Seed}

	// Stage 1: Split and apply rules
	splitStart := time.Now()
	reg, g, err := manuscript.Build(opts.Manuscript, opts.Rules)
	if err != nil {
		return nil, err
	}
	result.Sections = reg.Sections()
	result.Stats.SplitTime = time.Since(splitStart)
	result.Stats.SectionCount = reg.Len()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.FixedCount = len(reg.Fixed())

	logger.Info("split manuscript",
		"sections", reg.Len(),
		"constraints", g.EdgeCount(),
		"fixed", result.Stats.FixedCount,
		"duration", result.Stats.SplitTime)

	// Stages 2+3: Validate and shuffle, with caching
	shuffleStart := time.Now()
	perm, hit, err := r.ShuffleWithCacheInfo(ctx, reg, g, opts)
	if err != nil {
		return nil, err
	}
	result.Permutation = perm
	result.Order = perm.Order()
	result.Stats.ShuffleTime = time.Since(shuffleStart)
	result.CacheInfo.ShuffleHit = hit

	logger.Info("shuffled sections",
		"seed", opts.Seed,
		"cached", hit,
		"duration", result.Stats.ShuffleTime)

	// Stage 4: Join
	output, err := manuscript.Join(result.Sections, perm, opts.Rules.DelimiterOrDefault(), opts.Rules.Regex)
	if err != nil {
		return nil, err
	}
	result.Output = output

	return result, nil
}

// ShuffleWithCacheInfo validates and shuffles with caching, returning whether
// the permutation came from cache. The registry and graph must come from the
// same manuscript and rules as opts, since those form the cache key.
func (r *Runner) ShuffleWithCacheInfo(ctx context.Context, reg *section.Registry, g *constraint.Graph, opts Options) (shuffle.Permutation, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.shuffleKey(opts)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var perm shuffle.Permutation
			if err := json.Unmarshal(data, &perm); err == nil && perm.Len() == reg.Len() {
				observability.Cache().OnCacheHit(ctx, "shuffle")
				return perm, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "shuffle")
	}

	// Validate
	validateStart := time.Now()
	observability.Engine().OnValidateStart(ctx, reg.Len(), g.EdgeCount())
	v, err := shuffle.Validate(reg, g)
	observability.Engine().OnValidateComplete(ctx, reg.Len(), g.EdgeCount(), time.Since(validateStart), err)
	if err != nil {
		return nil, false, err
	}

	// Shuffle
	shuffleStart := time.Now()
	observability.Engine().OnShuffleStart(ctx, reg.Len(), opts.Seed)
	perm, err := shuffle.Shuffle(v, opts.Seed)
	observability.Engine().OnShuffleComplete(ctx, reg.Len(), time.Since(shuffleStart), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(perm); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.ShuffleTTL)
		observability.Cache().OnCacheSet(ctx, "shuffle", len(data))
	}

	return perm, false, nil
}

// RenderGraph renders the constraint graph for a manuscript and rules as DOT
// or SVG, with caching for the SVG case (Graphviz is the expensive part).
func (r *Runner) RenderGraph(ctx context.Context, opts Options, format string, detailed bool) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ValidateRenderFormat(format); err != nil {
		return nil, err
	}

	reg, g, err := manuscript.Build(opts.Manuscript, opts.Rules)
	if err != nil {
		return nil, err
	}

	dot := render.ToDOT(reg, g, render.Options{Detailed: detailed})
	if format == FormatDOT {
		return []byte(dot), nil
	}

	cacheKey := r.Keyer.RenderKey(cache.Hash([]byte(dot)), cache.RenderKeyOpts{Format: format})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "render")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	svg, err := render.RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	_ = r.Cache.Set(ctx, cacheKey, svg, cache.RenderTTL)
	observability.Cache().OnCacheSet(ctx, "render", len(svg))

	return svg, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// shuffleKey derives the cache key for a shuffle from the content hashes of
// the manuscript and rules plus the seed.
func (r *Runner) shuffleKey(opts Options) string {
	rulesData, _ := json.Marshal(opts.Rules)
	return r.Keyer.ShuffleKey(cache.Hash([]byte(opts.Manuscript)), cache.ShuffleKeyOpts{
		RulesHash: cache.Hash(rulesData),
		Seed:      opts.Seed,
	})
}

// logger returns the per-run logger: the one carried in options when set,
// the runner's otherwise.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
