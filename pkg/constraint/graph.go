package constraint

import (
	"errors"
	"slices"
)

var (
	// ErrUnknownSection is returned by [Graph.Add] and [Graph.Remove] when an
	// endpoint does not name a section in the registry the graph was built for.
	ErrUnknownSection = errors.New("unknown section")

	// ErrSelfConstraint is returned by [Graph.Add] when both endpoints are the
	// same section. A section cannot precede itself.
	ErrSelfConstraint = errors.New("section cannot precede itself")
)

// Edge is one precedence rule: Before must occupy an earlier position than
// After in every valid ordering.
type Edge struct {
	Before string
	After  string
}

// Graph is a directed graph over section identifiers encoding "must come
// before" relationships. Nodes live in an index-based arena: identifiers are
// interned to dense integer indices once at construction, and adjacency lists
// are keyed by those indices. There are no pointer-linked nodes.
//
// The zero value is not usable - use [New]. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	ids   []string
	index map[string]int
	out   [][]int // arena index -> successor indices
	in    [][]int // arena index -> predecessor indices
}

// New creates a constraint graph over the given section identifiers.
// The identifiers define the arena; every edge endpoint must be one of them.
// Duplicate identifiers are collapsed (the registry has already rejected
// them for real inputs).
func New(ids []string) *Graph {
	g := &Graph{
		ids:   make([]string, 0, len(ids)),
		index: make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		if _, exists := g.index[id]; exists {
			continue
		}
		g.index[id] = len(g.ids)
		g.ids = append(g.ids, id)
	}
	g.out = make([][]int, len(g.ids))
	g.in = make([][]int, len(g.ids))
	return g
}

// Add inserts the precedence edge before→after.
// Returns ErrUnknownSection if either endpoint is absent from the arena, or
// ErrSelfConstraint if the endpoints are identical. Re-adding an existing
// edge is a no-op: duplicates are idempotent.
func (g *Graph) Add(before, after string) error {
	if before == after {
		return ErrSelfConstraint
	}
	b, ok := g.index[before]
	if !ok {
		return ErrUnknownSection
	}
	a, ok := g.index[after]
	if !ok {
		return ErrUnknownSection
	}
	if slices.Contains(g.out[b], a) {
		return nil
	}
	g.out[b] = append(g.out[b], a)
	g.in[a] = append(g.in[a], b)
	return nil
}

// Remove deletes the edge before→after if present; no-op otherwise.
// Unknown endpoints are also a no-op: removing what was never added is not
// an error.
func (g *Graph) Remove(before, after string) {
	b, ok := g.index[before]
	if !ok {
		return
	}
	a, ok := g.index[after]
	if !ok {
		return
	}
	g.out[b] = slices.DeleteFunc(g.out[b], func(i int) bool { return i == a })
	g.in[a] = slices.DeleteFunc(g.in[a], func(i int) bool { return i == b })
}

// Len returns the number of sections in the arena.
func (g *Graph) Len() int { return len(g.ids) }

// EdgeCount returns the number of precedence edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, succs := range g.out {
		count += len(succs)
	}
	return count
}

// Edges returns all precedence edges, ordered by arena index of the Before
// endpoint, then insertion order. The result is a fresh slice.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for b, succs := range g.out {
		for _, a := range succs {
			edges = append(edges, Edge{Before: g.ids[b], After: g.ids[a]})
		}
	}
	return edges
}

// Successors returns the IDs that must come after the given section.
// Returns nil for unknown IDs or sections with no outgoing edges.
func (g *Graph) Successors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.resolve(g.out[i])
}

// Predecessors returns the IDs that must come before the given section.
// Returns nil for unknown IDs or sections with no incoming edges.
func (g *Graph) Predecessors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.resolve(g.in[i])
}

func (g *Graph) resolve(indices []int) []string {
	if len(indices) == 0 {
		return nil
	}
	ids := make([]string, len(indices))
	for i, idx := range indices {
		ids[i] = g.ids[idx]
	}
	return ids
}

// HasCycle reports whether the graph contains a directed cycle.
// A cycle means no linear extension exists, so no shuffle is possible.
//
// Detection is a depth-first traversal tracking node states
// {unvisited, in-progress, done}; any edge into an in-progress node proves a
// cycle. Runs in O(N+E) time.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.ids))
	var hasCycle bool

	var dfs func(i int)
	dfs = func(i int) {
		color[i] = gray
		for _, succ := range g.out[i] {
			switch color[succ] {
			case white:
				dfs(succ)
			case gray:
				hasCycle = true
				return
			}
		}
		color[i] = black
	}

	for i := range g.ids {
		if color[i] == white {
			dfs(i)
			if hasCycle {
				return true
			}
		}
	}
	return false
}

// Candidates returns the ready set: all sections not yet in assigned whose
// predecessors are all already in assigned. This is the pool the shuffle
// engine draws from at each step. The result is ordered by arena index, so
// a seeded random pick over it is reproducible.
func (g *Graph) Candidates(assigned map[string]bool) []string {
	var ready []string
	for i, id := range g.ids {
		if assigned[id] {
			continue
		}
		ok := true
		for _, pred := range g.in[i] {
			if !assigned[g.ids[pred]] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, id)
		}
	}
	return ready
}
