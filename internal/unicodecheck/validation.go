// Package unicodecheck flags Unicode that does not belong in field names or
// payload keys: invisible characters, direction overrides, control characters,
// private-use codepoints and non-NFC text.
package unicodecheck

import (
	"errors"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Problems reported by CheckName
var (
	ErrZeroWidth         = errors.New("contains zero-width characters")
	ErrBidiOverride      = errors.New("contains bidirectional override characters")
	ErrControlChar       = errors.New("contains control characters")
	ErrProblematicRune   = errors.New("contains private-use or non-character codepoints")
	ErrCombiningOverflow = errors.New("contains excessive combining marks")
	ErrNotNormalized     = errors.New("is not NFC normalized")
)

var zeroWidthChars = []rune{
	'\u200B', // Zero Width Space
	'\u200C', // Zero Width Non-Joiner
	'\u200D', // Zero Width Joiner
	'\u200E', // Left-to-Right Mark
	'\u200F', // Right-to-Left Mark
	'\u2060', // Word Joiner
	'\uFEFF', // Byte Order Mark
	'\u3164', // Hangul Filler
	'\uFFA0', // Halfwidth Hangul Filler
}

var bidiOverrideChars = []rune{
	'\u202A', '\u202B', '\u202C', '\u202D', '\u202E',
	'\u2066', '\u2067', '\u2068', '\u2069',
}

// maxCombiningRun is the longest run of combining marks accepted in a name
const maxCombiningRun = 2

// CheckName returns the first problem found in s, or nil if s is clean
func CheckName(s string) error {
	if ContainsZeroWidthChars(s) {
		return ErrZeroWidth
	}

	combiningRun := 0
	for _, r := range s {
		switch {
		case slices.Contains(bidiOverrideChars, r):
			return ErrBidiOverride
		case unicode.IsControl(r):
			return ErrControlChar
		case isProblematic(r):
			return ErrProblematicRune
		}

		if unicode.Is(unicode.Mn, r) {
			combiningRun++
			if combiningRun > maxCombiningRun {
				return ErrCombiningOverflow
			}
		} else {
			combiningRun = 0
		}
	}

	if !IsNFCNormalized(s) {
		return ErrNotNormalized
	}
	return nil
}

// ContainsZeroWidthChars reports whether s carries invisible characters
func ContainsZeroWidthChars(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return slices.Contains(zeroWidthChars, r)
	})
}

// IsNFCNormalized checks whether the string is in NFC (Canonical Composition) form.
func IsNFCNormalized(s string) bool {
	return norm.NFC.IsNormalString(s)
}

// SanitizeForLogging replaces control characters with [CTRL] and zero-width
// characters with [ZW] so user-supplied names are safe to log.
func SanitizeForLogging(s string) string {
	var result strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			result.WriteString("[CTRL]")
		case slices.Contains(zeroWidthChars, r):
			result.WriteString("[ZW]")
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

func isProblematic(r rune) bool {
	return unicode.Is(unicode.Co, r) ||
		unicode.Is(unicode.Cs, r) ||
		(r >= 0xFDD0 && r <= 0xFDEF) ||
		r&0xFFFF == 0xFFFE || r&0xFFFF == 0xFFFF
}
