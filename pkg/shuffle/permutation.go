package shuffle

import "slices"

// Permutation is a total, bijective mapping from section identifier to output
// position in [0, N). It is the engine's only product; reassembling text in
// the new order is the caller's job.
type Permutation map[string]int

// Position returns the output position of the given section and true, or
// 0 and false if the section is not part of the permutation.
func (p Permutation) Position(id string) (int, bool) {
	pos, ok := p[id]
	return pos, ok
}

// Len returns the number of sections in the permutation.
func (p Permutation) Len() int { return len(p) }

// Order returns the section identifiers sorted by output position, i.e. the
// new reading order of the manuscript.
func (p Permutation) Order() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int { return p[a] - p[b] })
	return ids
}
