package shuffle

import (
	"slices"

	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/errors"
	"github.com/matzehuels/storyshuffle/pkg/section"
)

// Validated is the proof that a registry and constraint graph describe a
// satisfiable ordering problem. It is produced only by [Validate] and
// consumed only by [Shuffle]; holding one guarantees the checks below have
// run against exactly this registry/graph pair.
//
// Validation never mutates its inputs. The handle caches the fixed-slot
// table and per-section bounds so repeated shuffles of the same inputs skip
// the bookkeeping.
type Validated struct {
	registry *section.Registry
	graph    *constraint.Graph

	fixedPos map[string]int // section ID -> pinned slot
	fixedAt  map[int]string // pinned slot -> section ID

	// deadline is the exclusive upper bound on a free section's slot: the
	// section must land strictly above every fixed successor, directly or
	// through a chain of free sections. Defaults to N.
	deadline map[string]int

	// release is the slot of a free section's lowest fixed predecessor, or
	// -1 when it has none. The section must land strictly below it.
	release map[string]int

	// fixedBelow[p] counts fixed slots strictly below position p; used to
	// convert slot ranges into free-slot counts during the shuffle walk.
	fixedBelow []int
}

// Registry returns the registry this handle was validated against.
func (v *Validated) Registry() *section.Registry { return v.registry }

// Graph returns the constraint graph this handle was validated against.
func (v *Validated) Graph() *constraint.Graph { return v.graph }

// Validate checks that the constraint graph and the registry's fixed-position
// assignments admit at least one valid ordering, per the rules the editor
// enforces one at a time:
//
//  1. The graph must be acyclic (CYCLE_DETECTED).
//  2. Every edge endpoint must name a registered section (UNKNOWN_SECTION).
//  3. Fixed positions must be pairwise distinct (DUPLICATE_FIXED_POSITION)
//     and inside [0, N) (FIXED_POSITION_OUT_OF_RANGE).
//  4. A constraint between two fixed sections must already be satisfied by
//     their slots, and a constraint into the first slot or out of the last
//     slot can never be satisfied (FIXED_POSITION_CONFLICT).
//  5. The fixed slots must leave room: every free section needs an open slot
//     between its fixed neighbors, and no group of sections may be confined
//     to fewer free slots than the group holds (FIXED_POSITION_CONFLICT).
//
// Validation is read-only. On success it returns the [Validated] handle the
// engine requires.
func Validate(reg *section.Registry, g *constraint.Graph) (*Validated, error) {
	n := reg.Len()

	if g.HasCycle() {
		return nil, errors.New(errors.ErrCodeCycleDetected, "constraints contain a cycle; no ordering can satisfy them")
	}

	for _, e := range g.Edges() {
		if !reg.Has(e.Before) {
			return nil, errors.New(errors.ErrCodeUnknownSection, "constraint references unknown section %q", e.Before)
		}
		if !reg.Has(e.After) {
			return nil, errors.New(errors.ErrCodeUnknownSection, "constraint references unknown section %q", e.After)
		}
	}

	fixedPos := make(map[string]int)
	fixedAt := make(map[int]string)
	for _, s := range reg.Fixed() {
		if s.Position < 0 || s.Position >= n {
			return nil, errors.New(errors.ErrCodeFixedPositionOutOfRange,
				"section %q is fixed at position %d, outside [0, %d)", s.ID, s.Position, n)
		}
		if other, dup := fixedAt[s.Position]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateFixedPosition,
				"sections %q and %q are both fixed at position %d", other, s.ID, s.Position)
		}
		fixedPos[s.ID] = s.Position
		fixedAt[s.Position] = s.ID
	}

	for _, e := range g.Edges() {
		bp, bFixed := fixedPos[e.Before]
		ap, aFixed := fixedPos[e.After]
		switch {
		case bFixed && aFixed:
			if bp >= ap {
				return nil, errors.New(errors.ErrCodeFixedPositionConflict,
					"%q is fixed at %d but must come before %q fixed at %d", e.Before, bp, e.After, ap)
			}
		case aFixed && ap == 0:
			return nil, errors.New(errors.ErrCodeFixedPositionConflict,
				"%q must come before %q, but %q is fixed at the first position", e.Before, e.After, e.After)
		case bFixed && bp == n-1:
			return nil, errors.New(errors.ErrCodeFixedPositionConflict,
				"%q must come after %q, but %q is fixed at the last position", e.After, e.Before, e.Before)
		}
	}

	v := &Validated{
		registry: reg,
		graph:    g,
		fixedPos: fixedPos,
		fixedAt:  fixedAt,
	}
	v.computeBounds(n)
	if err := v.feasible(); err != nil {
		return nil, err
	}
	return v, nil
}

// computeBounds derives the deadline and release of every free section, plus
// the fixed-slot prefix counts. Both bounds propagate through chains of free
// sections: if x precedes y and y must land below slot d, then x must land
// below slot d-1; if x must land above slot r, then y must land above r+1.
func (v *Validated) computeBounds(n int) {
	v.deadline = make(map[string]int, n)
	v.release = make(map[string]int, n)

	var deadlineOf func(id string) int
	deadlineOf = func(id string) int {
		if d, ok := v.deadline[id]; ok {
			return d
		}
		d := n
		for _, succ := range v.graph.Successors(id) {
			if p, fixed := v.fixedPos[succ]; fixed {
				d = min(d, p)
			} else {
				d = min(d, deadlineOf(succ)-1)
			}
		}
		v.deadline[id] = d
		return d
	}

	var releaseOf func(id string) int
	releaseOf = func(id string) int {
		if r, ok := v.release[id]; ok {
			return r
		}
		r := -1
		for _, pred := range v.graph.Predecessors(id) {
			if p, fixed := v.fixedPos[pred]; fixed {
				r = max(r, p)
			} else {
				r = max(r, releaseOf(pred)+1)
			}
		}
		v.release[id] = r
		return r
	}

	for _, id := range v.registry.IDs() {
		if _, fixed := v.fixedPos[id]; fixed {
			continue
		}
		deadlineOf(id)
		releaseOf(id)
	}

	v.fixedBelow = make([]int, n+1)
	for p := 0; p < n; p++ {
		v.fixedBelow[p+1] = v.fixedBelow[p]
		if _, ok := v.fixedAt[p]; ok {
			v.fixedBelow[p+1]++
		}
	}
}

// freeSlots returns the number of unpinned output positions in [from, to).
func (v *Validated) freeSlots(from, to int) int {
	if to <= from {
		return 0
	}
	return (to - from) - (v.fixedBelow[to] - v.fixedBelow[from])
}

// feasible proves the fixed slots leave room for every free section. Each
// free section is confined to the slot window (release, deadline); the set
// is satisfiable only if every window holds at least one free slot and no
// group of windows packs more sections than free slots (Hall's condition,
// checked over every window-bounded slot range). Rejecting here keeps the
// engine's infeasible paths unreachable for validated inputs.
func (v *Validated) feasible() error {
	type window struct{ lo, hi int } // permitted slots are [lo, hi)
	windows := make(map[string]window, len(v.release))
	loSet := make(map[int]bool)
	hiSet := make(map[int]bool)

	for _, id := range v.registry.IDs() {
		if _, fixed := v.fixedPos[id]; fixed {
			continue
		}
		w := window{lo: v.release[id] + 1, hi: v.deadline[id]}
		if v.freeSlots(w.lo, w.hi) < 1 {
			return errors.New(errors.ErrCodeFixedPositionConflict,
				"no free position remains for section %q between the fixed positions around it", id)
		}
		windows[id] = w
		loSet[w.lo] = true
		hiSet[w.hi] = true
	}

	los := make([]int, 0, len(loSet))
	for lo := range loSet {
		los = append(los, lo)
	}
	his := make([]int, 0, len(hiSet))
	for hi := range hiSet {
		his = append(his, hi)
	}
	slices.Sort(los)
	slices.Sort(his)

	for _, lo := range los {
		for _, hi := range his {
			if hi <= lo {
				continue
			}
			confined := 0
			for _, w := range windows {
				if w.lo >= lo && w.hi <= hi {
					confined++
				}
			}
			if slots := v.freeSlots(lo, hi); confined > slots {
				return errors.New(errors.ErrCodeFixedPositionConflict,
					"%d sections are constrained into %d free positions between fixed positions %d and %d",
					confined, slots, lo-1, hi)
			}
		}
	}
	return nil
}
