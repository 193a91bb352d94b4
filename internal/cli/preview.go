package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyshuffle/pkg/pipeline"
)

// previewOpts holds the command-line flags for the preview command.
type previewOpts struct {
	rulesPath string
	delimiter string
	regex     bool
	seed      uint64
	noCache   bool
}

// previewCommand creates the preview command: an interactive loop that
// reshuffles the manuscript until the writer finds an order they like.
func (c *CLI) previewCommand() *cobra.Command {
	var opts previewOpts

	cmd := &cobra.Command{
		Use:   "preview <manuscript>",
		Short: "Interactively reshuffle and preview orderings",
		Long: `Preview opens an interactive view of the shuffled manuscript. Press r to
roll a new ordering, and note the seed of one you like - the shuffle command
reproduces it exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rulesPath, "rules", "r", "", "TOML rules file with pins and constraints")
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", "", "section delimiter (overrides rules file)")
	cmd.Flags().BoolVar(&opts.regex, "regex", false, "treat delimiter as a regular expression")
	cmd.Flags().Uint64VarP(&opts.seed, "seed", "s", 0, "initial random seed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, path string, opts previewOpts) error {
	pipeOpts, err := loadOptions(path, opts.rulesPath, opts.delimiter, opts.regex)
	if err != nil {
		return err
	}
	pipeOpts.Seed = opts.seed
	pipeOpts.Logger = c.Logger

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	model := newPreviewModel(ctx, runner, pipeOpts)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	// Leave the winning seed on screen so the writer can reproduce it.
	if m, ok := final.(previewModel); ok && m.result != nil {
		printInfo("Last ordering: seed %s", StyleHighlight.Render(fmt.Sprint(m.seed)))
		printDetail("reproduce with: storyshuffle shuffle %s --seed %d", path, m.seed)
	}
	return nil
}

// =============================================================================
// PreviewModel - Interactive reshuffling
// =============================================================================

// shuffleResultMsg carries a finished shuffle back into the update loop.
type shuffleResultMsg struct {
	result *pipeline.Result
	seed   uint64
	err    error
}

// previewModel is the bubbletea model for the preview loop.
type previewModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options

	seed    uint64
	result  *pipeline.Result
	err     error
	rolling bool
	height  int
}

func newPreviewModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) previewModel {
	seed := opts.Seed
	if seed == 0 {
		seed = pipeline.DefaultSeed
	}
	return previewModel{
		ctx:    ctx,
		runner: runner,
		opts:   opts,
		seed:   seed,
		height: 20,
	}
}

func (m previewModel) Init() tea.Cmd {
	return m.shuffleCmd(m.seed)
}

// shuffleCmd runs the pipeline off the update loop.
func (m previewModel) shuffleCmd(seed uint64) tea.Cmd {
	opts := m.opts
	opts.Seed = seed
	return func() tea.Msg {
		result, err := m.runner.Execute(m.ctx, opts)
		return shuffleResultMsg{result: result, seed: seed, err: err}
	}
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r", "enter", " ":
			if m.rolling {
				return m, nil
			}
			m.rolling = true
			return m, m.shuffleCmd(rand.Uint64())
		}
	case shuffleResultMsg:
		m.rolling = false
		m.seed = msg.seed
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Storyshuffle Preview"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("r reshuffle  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(StyleWarning.Render("Shuffle failed: " + m.err.Error()))
		b.WriteString("\n")
	case m.result == nil || m.rolling:
		b.WriteString(StyleDim.Render("Shuffling..."))
		b.WriteString("\n")
	default:
		b.WriteString(StyleDim.Render("seed ") + StyleHighlight.Render(fmt.Sprint(m.seed)))
		b.WriteString(StyleDim.Render("  order ") + StyleValue.Render(strings.Join(m.result.Order, " → ")))
		b.WriteString("\n\n")

		byID := make(map[string]string, len(m.result.Sections))
		for _, s := range m.result.Sections {
			byID[s.ID] = s.Text
		}

		lines := 0
		for _, id := range m.result.Order {
			if lines >= m.height {
				b.WriteString(StyleDim.Render("…"))
				b.WriteString("\n")
				break
			}
			b.WriteString(StyleHighlight.Render("§"+id) + " " + StyleValue.Render(firstLine(byID[id])))
			b.WriteString("\n")
			lines++
		}
	}

	return b.String()
}

// firstLine returns the opening line of a section, truncated for display.
func firstLine(text string) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if runes := []rune(line); len(runes) > 70 {
		line = string(runes[:70]) + "…"
	}
	if line == "" {
		line = StyleDim.Render("(empty section)")
	}
	return line
}
