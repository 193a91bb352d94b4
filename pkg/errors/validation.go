package errors

import (
	"regexp"
	"unicode"
)

// ValidateDelimiter validates a section delimiter before it is used to split
// a manuscript. An empty delimiter would split between every character, which
// is never what a writer wants, so it is rejected up front.
//
// Language of the manuscript is irrelevant here; the delimiter is matched as
// opaque text (or compiled separately when regex mode is enabled).
func ValidateDelimiter(delimiter string) error {
	if delimiter == "" {
		return New(ErrCodeInvalidDelimiter, "delimiter cannot be empty")
	}

	if len(delimiter) > 256 {
		return New(ErrCodeInvalidDelimiter, "delimiter too long (max 256 characters)")
	}

	for _, r := range delimiter {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return New(ErrCodeInvalidDelimiter, "delimiter contains invalid control characters")
		}
	}

	return nil
}

// ValidateDelimiterRegex validates a delimiter that should be compiled as a
// regular expression, returning the compilation failure as a structured error.
func ValidateDelimiterRegex(pattern string) error {
	if err := ValidateDelimiter(pattern); err != nil {
		return err
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return Wrap(ErrCodeInvalidDelimiter, err, "invalid delimiter pattern %q", pattern)
	}
	return nil
}

// ValidateSectionRef validates a one-based section reference as it appears in
// a rules file. Zero and negative references are always malformed; upper-bound
// checks against the actual section count happen later, once the manuscript
// has been split.
func ValidateSectionRef(ref int) error {
	if ref < 1 {
		return New(ErrCodeInvalidRules, "section references are one-based, got %d", ref)
	}
	return nil
}

// ValidateSectionCount rejects manuscripts that cannot meaningfully be
// shuffled. A single section has exactly one ordering.
func ValidateSectionCount(n int) error {
	if n < 2 {
		return New(ErrCodeInvalidInput, "need at least 2 sections to shuffle, got %d", n)
	}
	return nil
}
