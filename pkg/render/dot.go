// Package render turns a constraint graph into a picture writers can read:
// sections as boxes, precedence rules as arrows, pinned sections marked.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/section"
)

// Options configures constraint graph rendering.
type Options struct {
	// Detailed includes a snippet of section text in node labels.
	// When false, only the section number is shown.
	Detailed bool

	// SnippetLen caps the text snippet length in detailed mode.
	// Zero means the default of 40 characters.
	SnippetLen int
}

const defaultSnippetLen = 40

// ToDOT converts a registry and constraint graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Fixed sections are drawn with a grey fill and their pinned slot in the
// label, so a writer can see at a glance what the shuffle will not touch.
func ToDOT(reg *section.Registry, g *constraint.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph constraints {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, s := range reg.Sections() {
		label := fmtLabel(s, opts)
		attrs := fmtAttrs(s, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Before, e.After)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s section.Section, opts Options) string {
	label := "§" + s.ID
	if s.Fixed {
		label += fmt.Sprintf(" (pinned at %d)", s.Position+1)
	}
	if !opts.Detailed {
		return label
	}

	n := opts.SnippetLen
	if n <= 0 {
		n = defaultSnippetLen
	}
	snippet := strings.Join(strings.Fields(s.Text), " ")
	if runes := []rune(snippet); len(runes) > n {
		snippet = string(runes[:n]) + "…"
	}
	if snippet == "" {
		return label
	}
	return label + "\n" + snippet
}

func fmtAttrs(s section.Section, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if s.Fixed {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or saving to a file.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG header so the image origin is
// (0, 0) and width/height match the viewBox. Browsers scale it cleanly then.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
