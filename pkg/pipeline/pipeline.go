// Package pipeline provides the core shuffle pipeline for storyshuffle.
//
// This package implements the complete split → validate → shuffle → join
// pipeline that can be used by CLI and server components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Split: Break the manuscript into sections and apply the rules
//  2. Validate: Check the constraint graph and pins are satisfiable
//  3. Shuffle: Draw a constraint-respecting permutation from the seed
//  4. Join: Reassemble the manuscript in the new order
//
// Shuffle results are cached by content hash; split and join are too cheap
// to be worth caching.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Manuscript: text,
//	    Rules:      rules,
//	    Seed:       7,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Output)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyshuffle/pkg/errors"
	"github.com/matzehuels/storyshuffle/pkg/manuscript"
	"github.com/matzehuels/storyshuffle/pkg/section"
	"github.com/matzehuels/storyshuffle/pkg/shuffle"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// DefaultSeed is the default random seed for reproducibility.
// It matches the engine's default so unseeded CLI and API runs agree.
const DefaultSeed = shuffle.DefaultSeed

// Render format constants for the graph command and API.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidRenderFormats is the set of supported graph render formats.
var ValidRenderFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// ValidateRenderFormat checks that a graph render format is valid.
func ValidateRenderFormat(format string) error {
	if !ValidRenderFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the shuffle pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Manuscript is the full manuscript text.
	Manuscript string `json:"manuscript"`

	// Rules are the writer's pins and precedence constraints, including the
	// delimiter. See [manuscript.Rules].
	Rules manuscript.Rules `json:"rules"`

	// Delimiter, when set, overrides Rules.Delimiter. Convenient for CLI
	// flags layered over a rules file.
	Delimiter string `json:"delimiter,omitempty"`

	// DelimiterRegex treats the delimiter as a regular expression.
	DelimiterRegex bool `json:"delimiter_regex,omitempty"`

	// Seed drives the random draw. Zero means DefaultSeed.
	Seed uint64 `json:"seed,omitempty"`

	// Refresh bypasses the cache and recomputes the shuffle.
	Refresh bool `json:"refresh,omitempty"`

	// Logger, when set, overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Manuscript == "" {
		return errors.New(errors.ErrCodeInvalidInput, "manuscript is required")
	}

	if o.Delimiter != "" {
		o.Rules.Delimiter = o.Delimiter
		o.Rules.Regex = o.DelimiterRegex
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}

	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Sections are the split sections in original manuscript order.
	Sections []section.Section

	// Permutation maps section IDs to output positions.
	Permutation shuffle.Permutation

	// Order is the new reading order as section IDs.
	Order []string

	// Output is the reassembled manuscript.
	Output string

	// Seed is the seed that actually drove the draw, after defaulting.
	// Callers echo it so a run can be reproduced exactly.
	Seed uint64

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the shuffle came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SectionCount int
	EdgeCount    int
	FixedCount   int
	SplitTime    time.Duration
	ShuffleTime  time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	ShuffleHit bool // Whether the permutation came from cache
}
