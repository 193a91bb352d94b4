package shuffle

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/storyshuffle/pkg/errors"
)

// DefaultSeed is the seed used when the caller does not supply one.
// A fixed default keeps unseeded runs reproducible.
const DefaultSeed = uint64(42)

// Shuffle produces a constraint-respecting permutation of the validated
// sections using a PCG source derived from seed. Identical inputs and seed
// always yield the identical permutation.
func Shuffle(v *Validated, seed uint64) (Permutation, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	return ShuffleRand(v, rng)
}

// ShuffleRand is [Shuffle] with a caller-owned random source. The source is
// advanced by the call and must not be shared with a concurrent shuffle.
//
// The walk visits output positions 0..N-1 in order. Fixed sections were
// pre-seeded into their slots; every other position is filled by a uniform
// draw from the eligible ready set. An INFEASIBLE error means a free slot
// could not be filled - unreachable after [Validate] for the inputs the
// validator fully covers, and a validator completeness defect otherwise,
// never a user mistake.
func ShuffleRand(v *Validated, rng *rand.Rand) (Permutation, error) {
	n := v.registry.Len()
	perm := make(Permutation, n)
	assigned := make(map[string]bool, n)

	for id, p := range v.fixedPos {
		perm[id] = p
		assigned[id] = true
	}

	unplaced := make(map[string]bool, n)
	for _, id := range v.registry.IDs() {
		if !assigned[id] {
			unplaced[id] = true
		}
	}

	for p := 0; p < n; p++ {
		if _, ok := v.fixedAt[p]; ok {
			continue
		}

		eligible, err := v.eligible(p, assigned, unplaced)
		if err != nil {
			return nil, err
		}
		if len(eligible) == 0 {
			return nil, errors.New(errors.ErrCodeInfeasible,
				"no section can fill position %d; the validator admitted an unsatisfiable constraint set", p)
		}

		pick := eligible[rng.IntN(len(eligible))]
		perm[pick] = p
		assigned[pick] = true
		delete(unplaced, pick)
	}

	return perm, nil
}

// eligible computes the draw pool for free position p: ready sections whose
// fixed predecessors all sit above p and whose deadline still permits p.
// When a deadline is tight - as many unplaced sections must land below slot
// d as there are free slots left in [p, d) - the pool shrinks to those
// urgent sections, otherwise one of them would be squeezed out.
func (v *Validated) eligible(p int, assigned, unplaced map[string]bool) ([]string, error) {
	ready := v.graph.Candidates(assigned)

	pool := ready[:0:0]
	for _, id := range ready {
		if v.release[id] >= p {
			continue // a fixed predecessor still lies at or below this slot
		}
		if v.deadline[id] <= p {
			return nil, errors.New(errors.ErrCodeInfeasible,
				"section %q must be placed before position %d, which is already filled", id, v.deadline[id])
		}
		pool = append(pool, id)
	}

	tight := v.tightDeadline(p, unplaced)
	if tight < 0 {
		return nil, errors.New(errors.ErrCodeInfeasible,
			"more sections are pinned before a fixed slot than there are free positions above it")
	}
	if tight > 0 {
		urgent := pool[:0:0]
		for _, id := range pool {
			if v.deadline[id] <= tight {
				urgent = append(urgent, id)
			}
		}
		pool = urgent
	}

	return pool, nil
}

// tightDeadline scans the unplaced sections' deadlines in ascending order and
// compares the cumulative count against the free slots available below each
// deadline. Returns the smallest tight deadline, 0 when there is slack
// everywhere, or a negative value when some deadline is over-subscribed.
func (v *Validated) tightDeadline(p int, unplaced map[string]bool) int {
	counts := make(map[int]int)
	for id := range unplaced {
		counts[v.deadline[id]]++
	}
	if len(counts) == 0 {
		return 0
	}

	deadlines := make([]int, 0, len(counts))
	for d := range counts {
		deadlines = append(deadlines, d)
	}
	// Manuscripts are small; an O(k log k) sort per slot is irrelevant.
	slices.Sort(deadlines)

	cumulative := 0
	for _, d := range deadlines {
		cumulative += counts[d]
		slots := v.freeSlots(p, d)
		if cumulative > slots {
			return -1
		}
		if cumulative == slots {
			return d
		}
	}
	return 0
}
