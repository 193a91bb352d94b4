package shuffle

import (
	"testing"

	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/errors"
	"github.com/matzehuels/storyshuffle/pkg/section"
)

// buildProblem constructs a registry and graph from compact fixtures.
// pins maps section ID to pinned slot; edges are before→after pairs.
func buildProblem(t *testing.T, ids []string, pins map[string]int, edges [][2]string) (*section.Registry, *constraint.Graph) {
	t.Helper()

	sections := make([]section.Section, len(ids))
	for i, id := range ids {
		sections[i] = section.Section{ID: id, Index: i}
		if p, ok := pins[id]; ok {
			sections[i].Fixed = true
			sections[i].Position = p
		}
	}
	reg, err := section.NewRegistry(sections)
	if err != nil {
		t.Fatal(err)
	}

	g := constraint.New(reg.IDs())
	for _, e := range edges {
		if err := g.Add(e[0], e[1]); err != nil {
			t.Fatalf("Add(%q, %q) error = %v", e[0], e[1], err)
		}
	}
	return reg, g
}

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		pins  map[string]int
		edges [][2]string
	}{
		{"no rules", []string{"1", "2", "3"}, nil, nil},
		{"chain", []string{"1", "2", "3"}, nil, [][2]string{{"1", "2"}, {"2", "3"}}},
		{"pin only", []string{"1", "2", "3"}, map[string]int{"2": 0}, nil},
		{"pins ordered with edge", []string{"1", "2", "3"},
			map[string]int{"1": 0, "3": 2}, [][2]string{{"1", "3"}}},
		{"edge into pinned middle slot", []string{"1", "2", "3"},
			map[string]int{"2": 1}, [][2]string{{"1", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, g := buildProblem(t, tt.ids, tt.pins, tt.edges)
			if _, err := Validate(reg, g); err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		pins     map[string]int
		edges    [][2]string
		wantCode errors.Code
	}{
		{
			name:     "cycle",
			ids:      []string{"1", "2", "3"},
			edges:    [][2]string{{"1", "2"}, {"2", "3"}, {"3", "1"}},
			wantCode: errors.ErrCodeCycleDetected,
		},
		{
			name:     "duplicate fixed position",
			ids:      []string{"1", "2", "3"},
			pins:     map[string]int{"1": 1, "3": 1},
			wantCode: errors.ErrCodeDuplicateFixedPosition,
		},
		{
			name:     "fixed position negative",
			ids:      []string{"1", "2"},
			pins:     map[string]int{"1": -1},
			wantCode: errors.ErrCodeFixedPositionOutOfRange,
		},
		{
			name:     "fixed position past end",
			ids:      []string{"1", "2"},
			pins:     map[string]int{"1": 2},
			wantCode: errors.ErrCodeFixedPositionOutOfRange,
		},
		{
			name:     "pinned pair violates edge",
			ids:      []string{"1", "2", "3"},
			pins:     map[string]int{"1": 2, "2": 0},
			edges:    [][2]string{{"1", "2"}},
			wantCode: errors.ErrCodeFixedPositionConflict,
		},
		{
			name:     "edge into first slot",
			ids:      []string{"1", "2", "3"},
			pins:     map[string]int{"2": 0},
			edges:    [][2]string{{"1", "2"}},
			wantCode: errors.ErrCodeFixedPositionConflict,
		},
		{
			name:     "edge out of last slot",
			ids:      []string{"1", "2", "3"},
			pins:     map[string]int{"1": 2},
			edges:    [][2]string{{"1", "2"}},
			wantCode: errors.ErrCodeFixedPositionConflict,
		},
		{
			// Two sections squeezed below one pinned slot with a single
			// free position under it.
			name:     "over-subscribed below pin",
			ids:      []string{"1", "2", "3"},
			pins:     map[string]int{"2": 1},
			edges:    [][2]string{{"1", "2"}, {"3", "2"}},
			wantCode: errors.ErrCodeFixedPositionConflict,
		},
		{
			name:     "over-subscribed above pin",
			ids:      []string{"1", "2", "3"},
			pins:     map[string]int{"2": 1},
			edges:    [][2]string{{"2", "1"}, {"2", "3"}},
			wantCode: errors.ErrCodeFixedPositionConflict,
		},
		{
			// A chain of two free sections cannot fit below a pin at slot 1.
			name:     "chain squeezed below pin",
			ids:      []string{"1", "2", "3", "4"},
			pins:     map[string]int{"4": 1},
			edges:    [][2]string{{"1", "2"}, {"2", "4"}},
			wantCode: errors.ErrCodeFixedPositionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, g := buildProblem(t, tt.ids, tt.pins, tt.edges)
			_, err := Validate(reg, g)
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("error code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestValidatedAccessors(t *testing.T) {
	reg, g := buildProblem(t, []string{"1", "2"}, nil, nil)
	v, err := Validate(reg, g)
	if err != nil {
		t.Fatal(err)
	}
	if v.Registry() != reg || v.Graph() != g {
		t.Error("Validated should expose the inputs it was built from")
	}
}
