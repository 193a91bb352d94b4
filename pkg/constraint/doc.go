// Package constraint provides the directed precedence graph over manuscript
// sections.
//
// # Overview
//
// Each edge encodes one ordering rule: the Before section must occupy an
// earlier position than the After section in any valid output. The graph is
// rebuilt from the registry and the user's rule list on every request, and
// is immutable during a single shuffle invocation.
//
// # Representation
//
// Nodes live in an index-based arena: section identifiers are interned to
// dense integers at construction and adjacency lists are keyed by those
// indices. Cycle detection is a plain graph traversal over the arena, not a
// memory-ownership concern, so nothing in the structure is pointer-linked.
//
// # Basic Usage
//
//	g := constraint.New(registry.IDs())
//	if err := g.Add("2", "4"); err != nil {
//	    return err // unknown section or self-constraint
//	}
//	if g.HasCycle() {
//	    // no linear extension exists
//	}
//
// The ready set consumed by the shuffle engine comes from [Graph.Candidates]:
// the sections whose precedence prerequisites are already satisfied at a
// given step.
//
// # Concurrency
//
// Graph instances are not safe for concurrent mutation. Read-only use
// (HasCycle, Candidates, Edges) can safely run in parallel across goroutines
// once construction is complete.
package constraint
