package util

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Backend Engineer", "Backend Engineer"},
		{"inner runs", "Backend   Engineer \t (Go)", "Backend Engineer (Go)"},
		{"newlines", "Backend\nEngineer\r\n Remote", "Backend Engineer Remote"},
		{"nbsp", "Backend Engineer", "Backend Engineer"},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "LinkedIn Jobs", "linkedin-jobs"},
		{"collapses runs", "Senior   Backend \n Engineer", "senior-backend-engineer"},
		{"trims", "  Data Analyst  ", "data-analyst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyMax(t *testing.T) {
	assert.Equal(t, "senior-back", SlugifyMax("Senior Backend Engineer", 11))
	// trailing hyphen from the cut is trimmed
	assert.Equal(t, "senior", SlugifyMax("Senior Backend", 7))
	assert.Equal(t, "short", SlugifyMax("short", 30))
}

func TestSlugifyMax_RuneBoundary(t *testing.T) {
	// "cañón" is 7 bytes; a cut at byte 3 lands inside the two-byte ñ
	assert.Equal(t, "ca", SlugifyMax("Cañón", 3))
	assert.Equal(t, "cañ", SlugifyMax("Cañón", 4))

	for max := 1; max <= 12; max++ {
		got := SlugifyMax("Diseñadora Gráfica", max)
		assert.True(t, utf8.ValidString(got), "max=%d got=%q", max, got)
		assert.LessOrEqual(t, len(got), max)
	}
}
