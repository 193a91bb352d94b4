package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/manuscript"
	"github.com/matzehuels/storyshuffle/pkg/perm"
	"github.com/matzehuels/storyshuffle/pkg/section"
	"github.com/matzehuels/storyshuffle/pkg/shuffle"
)

// maxExactSections bounds exhaustive counting. 10! = 3,628,800 orderings is
// the most we enumerate before the answer stops being worth the wait.
const maxExactSections = 10

// statsOpts holds the command-line flags for the stats command.
type statsOpts struct {
	rulesPath string
	delimiter string
	regex     bool
}

// statsCommand creates the stats command, which reports how constrained a
// manuscript is: how many orderings exist and how many survive the rules.
func (c *CLI) statsCommand() *cobra.Command {
	var opts statsOpts

	cmd := &cobra.Command{
		Use:   "stats <manuscript>",
		Short: "Report the ordering space of a manuscript under its rules",
		Long: `Stats splits the manuscript, applies the rules, and reports how much
freedom the shuffle actually has: the total number of orderings, and - for
manuscripts of up to ` + fmt.Sprint(maxExactSections) + ` sections - the exact number that satisfy
the constraints.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rulesPath, "rules", "r", "", "TOML rules file with pins and constraints")
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", "", "section delimiter (overrides rules file)")
	cmd.Flags().BoolVar(&opts.regex, "regex", false, "treat delimiter as a regular expression")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, path string, opts statsOpts) error {
	pipeOpts, err := loadOptions(path, opts.rulesPath, opts.delimiter, opts.regex)
	if err != nil {
		return err
	}

	reg, g, err := manuscript.Build(pipeOpts.Manuscript, pipeOpts.Rules)
	if err != nil {
		return err
	}
	if _, err := shuffle.Validate(reg, g); err != nil {
		return err
	}

	n := reg.Len()
	printInfo("Manuscript: %s", StyleHighlight.Render(path))
	printKeyValue("sections", fmt.Sprint(n))
	printKeyValue("constraints", fmt.Sprint(g.EdgeCount()))
	printKeyValue("pinned", fmt.Sprint(len(reg.Fixed())))
	printKeyValue("orderings", fmt.Sprint(perm.Factorial(n)))

	if n > maxExactSections {
		printDetail("valid ordering count skipped (more than %d sections)", maxExactSections)
		return nil
	}

	valid := countValidOrderings(reg, g)
	printKeyValue("valid", fmt.Sprint(valid))
	if total := perm.Factorial(n); total > 0 {
		printDetail("%.2f%% of all orderings satisfy the rules", 100*float64(valid)/float64(total))
	}
	return nil
}

// countValidOrderings enumerates every permutation and counts those that
// satisfy the pins and precedence constraints. Exponential; callers bound n.
func countValidOrderings(reg *section.Registry, g *constraint.Graph) int {
	ids := reg.IDs()
	n := len(ids)

	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	type pin struct{ section, position int }
	var pins []pin
	for _, s := range reg.Fixed() {
		pins = append(pins, pin{index[s.ID], s.Position})
	}

	type edge struct{ before, after int }
	var edges []edge
	for _, e := range g.Edges() {
		edges = append(edges, edge{index[e.Before], index[e.After]})
	}

	valid := 0
	pos := make([]int, n)
	for _, p := range perm.Generate(n, 0) {
		// p[i] is the section occupying position i
		for i, s := range p {
			pos[s] = i
		}

		ok := true
		for _, pn := range pins {
			if pos[pn.section] != pn.position {
				ok = false
				break
			}
		}
		if ok {
			for _, e := range edges {
				if pos[e.before] >= pos[e.after] {
					ok = false
					break
				}
			}
		}
		if ok {
			valid++
		}
	}
	return valid
}
