package cli

import (
	"testing"

	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/section"
)

func buildRegistry(t *testing.T, sections []section.Section) *section.Registry {
	t.Helper()
	reg, err := section.NewRegistry(sections)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestCountValidOrderingsUnconstrained(t *testing.T) {
	reg := buildRegistry(t, []section.Section{
		{ID: "1"}, {ID: "2"}, {ID: "3"},
	})
	g := constraint.New(reg.IDs())

	// No rules: all 3! orderings are valid
	if got := countValidOrderings(reg, g); got != 6 {
		t.Errorf("countValidOrderings() = %d, want 6", got)
	}
}

func TestCountValidOrderingsWithConstraint(t *testing.T) {
	reg := buildRegistry(t, []section.Section{
		{ID: "1"}, {ID: "2"}, {ID: "3"},
	})
	g := constraint.New(reg.IDs())
	if err := g.Add("1", "2"); err != nil {
		t.Fatal(err)
	}

	// One precedence rule halves the space
	if got := countValidOrderings(reg, g); got != 3 {
		t.Errorf("countValidOrderings() = %d, want 3", got)
	}
}

func TestCountValidOrderingsWithPin(t *testing.T) {
	reg := buildRegistry(t, []section.Section{
		{ID: "1", Fixed: true, Position: 0}, {ID: "2"}, {ID: "3"},
	})
	g := constraint.New(reg.IDs())

	// First slot pinned: 2! orderings of the rest
	if got := countValidOrderings(reg, g); got != 2 {
		t.Errorf("countValidOrderings() = %d, want 2", got)
	}
}

func TestCountValidOrderingsPinAndConstraint(t *testing.T) {
	reg := buildRegistry(t, []section.Section{
		{ID: "1", Fixed: true, Position: 0},
		{ID: "2"},
		{ID: "3"},
		{ID: "4"},
	})
	g := constraint.New(reg.IDs())
	if err := g.Add("2", "3"); err != nil {
		t.Fatal(err)
	}

	// 3! orderings of the free sections, half satisfy 2 before 3
	if got := countValidOrderings(reg, g); got != 3 {
		t.Errorf("countValidOrderings() = %d, want 3", got)
	}
}
