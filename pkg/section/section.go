// Package section provides the registry of manuscript sections consumed by
// the constraint graph and the shuffle engine.
//
// A Section is an atomic, reorderable unit of manuscript text. The registry
// is an immutable snapshot: it is rebuilt whenever the caller changes the
// manuscript or constraint set, and never mutated during a shuffle. The
// engine treats section text as opaque; only identity, original order, and
// fixed-position pins matter here.
package section

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidSectionID is returned by [NewRegistry] when a section ID is
	// empty. All sections must have non-empty identifiers.
	ErrInvalidSectionID = errors.New("section ID must not be empty")

	// ErrDuplicateSectionID is returned by [NewRegistry] when two sections
	// share an ID. Section IDs must be unique.
	ErrDuplicateSectionID = errors.New("duplicate section ID")
)

// Section represents one reorderable unit of manuscript text.
//
// ID is a stable, unique identifier (the manuscript layer uses one-based
// ordinals like "1", "2", ... because the target audience is writers, not
// programmers). Index is the section's position in the original manuscript.
// Text is opaque to the engine and carried through untouched.
//
// When Fixed is set, Position pins the section to that slot in every output
// ordering; Position is ignored otherwise.
type Section struct {
	ID       string
	Index    int
	Text     string
	Fixed    bool
	Position int
}

// Registry is the ordered, immutable collection of sections for a single
// shuffle request. The zero value is not usable - use [NewRegistry].
type Registry struct {
	sections []Section
	byID     map[string]int
}

// NewRegistry builds a registry from sections in manuscript order.
// Returns ErrInvalidSectionID for an empty ID or ErrDuplicateSectionID when
// two sections collide. The input slice is copied; later mutation of the
// caller's slice does not affect the registry.
func NewRegistry(sections []Section) (*Registry, error) {
	byID := make(map[string]int, len(sections))
	for i, s := range sections {
		if s.ID == "" {
			return nil, ErrInvalidSectionID
		}
		if _, exists := byID[s.ID]; exists {
			return nil, ErrDuplicateSectionID
		}
		byID[s.ID] = i
	}
	return &Registry{
		sections: slices.Clone(sections),
		byID:     byID,
	}, nil
}

// Len returns the number of sections.
func (r *Registry) Len() int { return len(r.sections) }

// Section returns the section with the given ID and true, or a zero Section
// and false if not found.
func (r *Registry) Section(id string) (Section, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Section{}, false
	}
	return r.sections[i], true
}

// Has reports whether a section with the given ID exists.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns all section IDs in manuscript order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.sections))
	for i, s := range r.sections {
		ids[i] = s.ID
	}
	return ids
}

// Sections returns a copy of all sections in manuscript order.
// Modifications to the returned slice do not affect the registry.
func (r *Registry) Sections() []Section {
	return slices.Clone(r.sections)
}

// Fixed returns the fixed sections in manuscript order.
// Returns nil when no section is pinned.
func (r *Registry) Fixed() []Section {
	var fixed []Section
	for _, s := range r.sections {
		if s.Fixed {
			fixed = append(fixed, s)
		}
	}
	return fixed
}
