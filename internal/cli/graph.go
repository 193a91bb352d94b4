package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyshuffle/pkg/pipeline"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	rulesPath string
	delimiter string
	regex     bool
	format    string
	output    string
	detailed  bool
	noCache   bool
	refresh   bool
}

// graphCommand creates the graph command, which renders the constraint graph
// so a writer can see their rules before shuffling.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <manuscript>",
		Short: "Render the constraint graph as DOT or SVG",
		Long: `Graph renders the manuscript's precedence rules and pins as a diagram:
sections as boxes, "must come before" rules as arrows, pinned sections shaded.

Examples:
  storyshuffle graph draft.txt --rules rules.toml -o rules.svg
  storyshuffle graph draft.txt --rules rules.toml --format dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateRenderFormat(opts.format); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rulesPath, "rules", "r", "", "TOML rules file with pins and constraints")
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", "", "section delimiter (overrides rules file)")
	cmd.Flags().BoolVar(&opts.regex, "regex", false, "treat delimiter as a regular expression")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: svg (default), dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include section text snippets in labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, path string, opts graphOpts) error {
	pipeOpts, err := loadOptions(path, opts.rulesPath, opts.delimiter, opts.regex)
	if err != nil {
		return err
	}
	pipeOpts.Refresh = opts.refresh
	pipeOpts.Logger = loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	data, err := runner.RenderGraph(ctx, pipeOpts, opts.format, opts.detailed)
	if err != nil {
		printError("Render failed")
		return err
	}
	prog.done("Rendered constraint graph")

	if opts.output == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	printSuccess("Wrote constraint graph")
	printFile(opts.output)
	return nil
}
