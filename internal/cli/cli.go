// Package cli implements the storyshuffle command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyshuffle/pkg/buildinfo"
	"github.com/matzehuels/storyshuffle/pkg/cache"
	"github.com/matzehuels/storyshuffle/pkg/manuscript"
	"github.com/matzehuels/storyshuffle/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "storyshuffle"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "storyshuffle",
		Short:        "Storyshuffle rearranges manuscript sections under constraints",
		Long:         `Storyshuffle is a tool for writers experimenting with non-linear narrative: it splits a manuscript into sections and rearranges them randomly while honoring precedence rules and pinned sections.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.shuffleCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/storyshuffle/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readManuscript reads the manuscript from a file, or from stdin when the
// path is "-".
func readManuscript(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read manuscript %s: %w", path, err)
	}
	return string(data), nil
}

// loadOptions assembles pipeline options from a manuscript path and the
// shared rules/delimiter flags.
func loadOptions(path, rulesPath, delimiter string, regex bool) (pipeline.Options, error) {
	text, err := readManuscript(path)
	if err != nil {
		return pipeline.Options{}, err
	}

	var rules manuscript.Rules
	if rulesPath != "" {
		rules, err = manuscript.LoadRules(rulesPath)
		if err != nil {
			return pipeline.Options{}, err
		}
	}

	return pipeline.Options{
		Manuscript:     text,
		Rules:          rules,
		Delimiter:      delimiter,
		DelimiterRegex: regex,
	}, nil
}
