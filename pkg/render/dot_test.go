package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/section"
)

func testGraph(t *testing.T) (*section.Registry, *constraint.Graph) {
	t.Helper()

	reg, err := section.NewRegistry([]section.Section{
		{ID: "1", Index: 0, Text: "The opening scene sets everything in motion.", Fixed: true, Position: 0},
		{ID: "2", Index: 1, Text: "A quiet interlude."},
		{ID: "3", Index: 2, Text: "The reveal."},
	})
	if err != nil {
		t.Fatal(err)
	}

	g := constraint.New(reg.IDs())
	if err := g.Add("2", "3"); err != nil {
		t.Fatal(err)
	}
	return reg, g
}

func TestToDOT(t *testing.T) {
	reg, g := testGraph(t)

	dot := ToDOT(reg, g, Options{})

	if !strings.HasPrefix(dot, "digraph constraints {") {
		t.Errorf("DOT should start with digraph header, got %q", dot[:40])
	}
	for _, want := range []string{`"1"`, `"2"`, `"3"`, `"2" -> "3";`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Pinned sections are marked
	if !strings.Contains(dot, "pinned at 1") {
		t.Errorf("DOT should mark the fixed section:\n%s", dot)
	}
	if !strings.Contains(dot, "fillcolor=lightgrey") {
		t.Errorf("DOT should shade the fixed section:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	reg, g := testGraph(t)

	dot := ToDOT(reg, g, Options{Detailed: true, SnippetLen: 10})

	// Snippet is truncated with an ellipsis
	if !strings.Contains(dot, "The openin…") {
		t.Errorf("DOT should contain a truncated snippet:\n%s", dot)
	}
	// Short sections appear untruncated
	if !strings.Contains(dot, "The reveal") {
		t.Errorf("DOT should contain short section text:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)

	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("width/height not rewritten: %s", out)
	}
}

func TestNormalizeViewBoxNoMatch(t *testing.T) {
	in := []byte("<svg>no viewbox</svg>")
	out := normalizeViewBox(in)
	if string(out) != string(in) {
		t.Error("SVG without viewBox should pass through unchanged")
	}
}
