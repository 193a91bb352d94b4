// Package manuscript handles the thin text layer around the shuffle engine:
// splitting a manuscript into sections on a delimiter, loading the writer's
// rules file, and reassembling the shuffled result.
//
// Section identifiers are one-based ordinals ("1", "2", ...) because the
// audience is writers, not programmers; everything downstream treats them as
// opaque strings.
package manuscript

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/storyshuffle/pkg/errors"
	"github.com/matzehuels/storyshuffle/pkg/section"
	"github.com/matzehuels/storyshuffle/pkg/shuffle"
)

// DefaultDelimiter is the section break used when the writer does not supply
// one: a dinkus, the typographic scene separator.
const DefaultDelimiter = "* * *"

// dinkusJoin separates sections on reassembly when the original delimiter was
// a regular expression and therefore cannot be reproduced verbatim.
const dinkusJoin = "\n\n* * *\n\n"

// Split breaks a manuscript into sections at occurrences of the delimiter,
// trimming whitespace from both ends of every section. When isRegex is set
// the delimiter is compiled as a regular expression; otherwise it is matched
// as plain text.
//
// Sections receive one-based ordinal IDs in lexical order. Split never drops
// empty sections: writers notice missing scene breaks.
func Split(text, delimiter string, isRegex bool) ([]section.Section, error) {
	var parts []string
	if isRegex {
		if err := errors.ValidateDelimiterRegex(delimiter); err != nil {
			return nil, err
		}
		re := regexp.MustCompile(delimiter)
		parts = re.Split(text, -1)
	} else {
		if err := errors.ValidateDelimiter(delimiter); err != nil {
			return nil, err
		}
		parts = strings.Split(text, delimiter)
	}

	sections := make([]section.Section, len(parts))
	for i, p := range parts {
		sections[i] = section.Section{
			ID:    strconv.Itoa(i + 1),
			Index: i,
			Text:  strings.TrimSpace(p),
		}
	}
	return sections, nil
}

// Join reassembles the manuscript with sections in permutation order. The
// plain delimiter is reinstated verbatim between sections; a regex delimiter
// cannot be, so a dinkus stands in.
//
// Every section must appear in the permutation; a gap means the caller mixed
// a permutation from a different manuscript and is reported as INVALID_INPUT.
func Join(sections []section.Section, p shuffle.Permutation, delimiter string, isRegex bool) (string, error) {
	sep := "\n\n" + delimiter + "\n\n"
	if isRegex {
		sep = dinkusJoin
	}

	ordered := make([]string, len(sections))
	for _, s := range sections {
		pos, ok := p.Position(s.ID)
		if !ok || pos < 0 || pos >= len(sections) {
			return "", errors.New(errors.ErrCodeInvalidInput,
				"permutation does not cover section %q", s.ID)
		}
		ordered[pos] = s.Text
	}

	return strings.Join(ordered, sep), nil
}
