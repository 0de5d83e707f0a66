package unicodecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"plain ascii", "firstName", nil},
		{"dotted", "emergencyContact.phone", nil},
		{"accented NFC", "prénom", nil},
		{"single combining mark after base", "e\u0301x", ErrNotNormalized},
		{"zero width space", "first\u200BName", ErrZeroWidth},
		{"hangul filler", "\u3164", ErrZeroWidth},
		{"zero width reported before control", "a\nb\u200B", ErrZeroWidth},
		{"bidi override", "name\u202E", ErrBidiOverride},
		{"newline", "first\nName", ErrControlChar},
		{"tab", "first\tName", ErrControlChar},
		{"private use", "x\uE000", ErrProblematicRune},
		{"non-character", "x\uFDD0", ErrProblematicRune},
		{"zalgo", "a\u0301\u0302\u0303", ErrCombiningOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, CheckName(tt.input), tt.want)
			if tt.want == nil {
				assert.NoError(t, CheckName(tt.input))
			}
		})
	}
}

func TestContainsZeroWidthChars(t *testing.T) {
	assert.True(t, ContainsZeroWidthChars("a\uFEFFb"))
	assert.False(t, ContainsZeroWidthChars("ab"))
}

func TestIsNFCNormalized(t *testing.T) {
	assert.True(t, IsNFCNormalized("café"))
	assert.False(t, IsNFCNormalized("cafe\u0301"))
}

func TestSanitizeForLogging(t *testing.T) {
	assert.Equal(t, "a[CTRL]b[ZW]c", SanitizeForLogging("a\nb\u200Bc"))
	assert.Equal(t, "clean", SanitizeForLogging("clean"))
}
