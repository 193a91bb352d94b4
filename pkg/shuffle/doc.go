// Package shuffle validates constraint sets and produces constraint-respecting
// random orderings of manuscript sections.
//
// # Overview
//
// The package exposes the engine's whole contract in two calls:
//
//	v, err := shuffle.Validate(registry, graph)
//	if err != nil {
//	    return err // typed: cycle, bad fixed position, conflict
//	}
//	perm, err := shuffle.Shuffle(v, seed)
//
// [Validate] proves the constraint set satisfiable (acyclic graph, coherent
// fixed positions) and returns a [Validated] handle. [Shuffle] accepts only
// that handle, so the engine can never run on an unchecked graph - a design
// invariant, not an optimization.
//
// # Algorithm
//
// The engine runs a randomized Kahn's algorithm with fixed-slot pre-seeding:
// fixed sections are placed first, then output positions are walked in order
// and each free slot is filled by a uniform random draw from the ready set
// (sections whose predecessors are all placed). Two guards keep the walk
// honest around mid-table fixed slots: a section is only drawn once every
// fixed predecessor sits above the current slot, and when exactly as many
// unplaced sections must land before some fixed slot as there are free slots
// left above it, the draw is restricted to those urgent sections.
//
// # Sampling caveat
//
// Uniform selection from the ready set does not sample uniformly from the
// full space of linear extensions - orderings with more branching early are
// over-represented. That is a deliberate trade-off: the goal is variety
// subject to constraints, and exact uniform sampling is a counting problem
// out of scope for this tool. Do not "fix" this without product confirmation.
//
// # Determinism
//
// Given the same registry, graph, and seed, the engine produces the same
// permutation every time. The random source belongs to one invocation;
// sharing it across concurrent shuffles requires external synchronization.
package shuffle
