package manuscript

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/storyshuffle/pkg/constraint"
	"github.com/matzehuels/storyshuffle/pkg/errors"
	"github.com/matzehuels/storyshuffle/pkg/section"
)

// Rules is the writer-facing description of how a manuscript may be
// rearranged: the delimiter that separates sections, and per-section pins
// and ordering constraints. It maps directly onto the TOML rules file:
//
//	delimiter = "* * *"
//	regex = false
//
//	[[section]]
//	ref = 1
//	fixed = true        # keep the opening where it is
//
//	[[section]]
//	ref = 3
//	before = [5, 7]     # section 3 must precede sections 5 and 7
//
//	[[section]]
//	ref = 9
//	fixed = true
//	at = 4              # pin to an explicit slot (one-based)
//
// All section references are one-based, matching how writers count. A fixed
// section without an explicit slot stays at its original position.
type Rules struct {
	Delimiter string        `toml:"delimiter" json:"delimiter,omitempty"`
	Regex     bool          `toml:"regex" json:"regex,omitempty"`
	Sections  []SectionRule `toml:"section" json:"sections,omitempty"`
}

// SectionRule holds the constraints attached to a single section.
type SectionRule struct {
	Ref    int   `toml:"ref" json:"ref"`
	Fixed  bool  `toml:"fixed" json:"fixed,omitempty"`
	At     *int  `toml:"at" json:"at,omitempty"`
	Before []int `toml:"before" json:"before,omitempty"`
}

// DelimiterOrDefault returns the configured delimiter, falling back to the
// standard dinkus when the rules file leaves it empty.
func (r Rules) DelimiterOrDefault() string {
	if r.Delimiter == "" {
		return DefaultDelimiter
	}
	return r.Delimiter
}

// LoadRules reads and decodes a TOML rules file.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, errors.Wrap(errors.ErrCodeInvalidRules, err, "read rules file %s", path)
	}
	return ParseRules(string(data))
}

// ParseRules decodes a TOML rules document.
func ParseRules(data string) (Rules, error) {
	var r Rules
	md, err := toml.Decode(data, &r)
	if err != nil {
		return Rules{}, errors.Wrap(errors.ErrCodeInvalidRules, err, "decode rules")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Rules{}, errors.New(errors.ErrCodeInvalidRules, "unknown key %q in rules", undecoded[0].String())
	}
	for _, s := range r.Sections {
		if err := errors.ValidateSectionRef(s.Ref); err != nil {
			return Rules{}, err
		}
		if s.At != nil {
			if err := errors.ValidateSectionRef(*s.At); err != nil {
				return Rules{}, err
			}
			if !s.Fixed {
				return Rules{}, errors.New(errors.ErrCodeInvalidRules,
					"section %d has a slot but is not fixed", s.Ref)
			}
		}
		for _, b := range s.Before {
			if err := errors.ValidateSectionRef(b); err != nil {
				return Rules{}, err
			}
			if b == s.Ref {
				return Rules{}, errors.New(errors.ErrCodeInvalidRules,
					"section %d cannot come before itself", s.Ref)
			}
		}
	}
	return r, nil
}

// Build splits a manuscript and applies the rules to it, producing the
// registry and constraint graph the engine consumes. Section references that
// exceed the actual section count are rejected as INVALID_RULES; a manuscript
// with fewer than two sections cannot be shuffled at all.
func Build(text string, rules Rules) (*section.Registry, *constraint.Graph, error) {
	sections, err := Split(text, rules.DelimiterOrDefault(), rules.Regex)
	if err != nil {
		return nil, nil, err
	}
	if err := errors.ValidateSectionCount(len(sections)); err != nil {
		return nil, nil, err
	}

	inRange := func(ref int) error {
		if ref > len(sections) {
			return errors.New(errors.ErrCodeInvalidRules,
				"rules reference section %d but the manuscript has only %d", ref, len(sections))
		}
		return nil
	}

	for _, r := range rules.Sections {
		if err := inRange(r.Ref); err != nil {
			return nil, nil, err
		}
		if r.At != nil {
			if err := inRange(*r.At); err != nil {
				return nil, nil, err
			}
		}
		if r.Fixed {
			s := &sections[r.Ref-1]
			s.Fixed = true
			s.Position = r.Ref - 1
			if r.At != nil {
				s.Position = *r.At - 1
			}
		}
	}

	reg, err := section.NewRegistry(sections)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build registry")
	}

	g := constraint.New(reg.IDs())
	for _, r := range rules.Sections {
		for _, b := range r.Before {
			if err := inRange(b); err != nil {
				return nil, nil, err
			}
			if err := g.Add(strconv.Itoa(r.Ref), strconv.Itoa(b)); err != nil {
				return nil, nil, err
			}
		}
	}

	return reg, g, nil
}
