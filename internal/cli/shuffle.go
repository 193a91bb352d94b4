package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// shuffleOpts holds the command-line flags for the shuffle command.
type shuffleOpts struct {
	rulesPath string // TOML rules file
	delimiter string // section delimiter (overrides rules file)
	regex     bool   // treat delimiter as a regular expression
	seed      uint64 // random seed (0 = default)
	output    string // output file path (stdout if empty)
	noCache   bool   // disable caching entirely
	refresh   bool   // bypass cached results
	showOrder bool   // print the new section order instead of the text
}

// shuffleCommand creates the shuffle command, the main entry point.
func (c *CLI) shuffleCommand() *cobra.Command {
	var opts shuffleOpts

	cmd := &cobra.Command{
		Use:   "shuffle <manuscript>",
		Short: "Shuffle manuscript sections under the given rules",
		Long: `Shuffle splits a manuscript into sections and rearranges them randomly
while honoring the precedence rules and pins from the rules file.

The same manuscript, rules, and seed always produce the same ordering, so a
draft you like can be reproduced exactly. Pass a different --seed to explore
other orderings.

Examples:
  storyshuffle shuffle draft.txt                       # Default rules and seed
  storyshuffle shuffle draft.txt --rules rules.toml    # With constraints
  storyshuffle shuffle draft.txt --seed 7 -o out.txt   # Reproducible, to a file
  cat draft.txt | storyshuffle shuffle -               # From stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShuffle(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rulesPath, "rules", "r", "", "TOML rules file with pins and constraints")
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", "", "section delimiter (overrides rules file)")
	cmd.Flags().BoolVar(&opts.regex, "regex", false, "treat delimiter as a regular expression")
	cmd.Flags().Uint64VarP(&opts.seed, "seed", "s", 0, "random seed (same seed, same order)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.showOrder, "order", false, "print the new section order instead of the text")

	return cmd
}

// runShuffle executes the shuffle pipeline and writes the result.
func (c *CLI) runShuffle(ctx context.Context, path string, opts shuffleOpts) error {
	pipeOpts, err := loadOptions(path, opts.rulesPath, opts.delimiter, opts.regex)
	if err != nil {
		return err
	}
	pipeOpts.Seed = opts.seed
	pipeOpts.Refresh = opts.refresh
	pipeOpts.Logger = loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		printError("Shuffle failed")
		return err
	}
	prog.done(fmt.Sprintf("Shuffled %d sections", result.Stats.SectionCount))

	if opts.showOrder {
		printInfo("New order: %s", StyleHighlight.Render(strings.Join(result.Order, " → ")))
		printStats(result.Stats.SectionCount, result.Stats.EdgeCount, result.Stats.FixedCount, result.CacheInfo.ShuffleHit)
		return nil
	}

	if opts.output == "" {
		fmt.Println(result.Output)
		return nil
	}

	if err := os.WriteFile(opts.output, []byte(result.Output), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	printSuccess("Wrote shuffled manuscript")
	printFile(opts.output)
	printStats(result.Stats.SectionCount, result.Stats.EdgeCount, result.Stats.FixedCount, result.CacheInfo.ShuffleHit)
	return nil
}
