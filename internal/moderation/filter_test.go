package moderation

import (
	"strings"
	"testing"
	"time"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsProfanity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain", "que merda", true},
		{"upper case", "MERDA!", true},
		{"diacritics in input", "seu pÊnis", true},
		{"diacritics in list entry", "tesao", true},
		{"leetspeak", "m3rd4", true},
		{"leetspeak symbols", "p0rr@", true},
		{"dotted separators", "p.o.r.r.a", true},
		{"leet with separators", "m-3-r-d-4", true},
		{"spaced letters", "isso e m e r d a mesmo", true},
		{"hyphen boundary", "cu-de-garrafa", true},
		{"clean sentence", "Deus é amor e fidelidade", false},
		{"embedded in longer word", "cuidado com a cultura", false},
		{"embedded in longer word 2", "infernal calor", false},
		{"empty", "", false},
		{"only punctuation", "!!! ... ???", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsProfanity(tt.text), "text %q", tt.text)
		})
	}
}

func TestContainsProfanity_LongSpelledInput(t *testing.T) {
	long := strings.Repeat("a ", 1000)

	start := time.Now()
	assert.False(t, ContainsProfanity(long))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "spelled-letter scan must stay linear")

	assert.True(t, ContainsProfanity(long+"m e r d a"), "a word at the end of a long run is still found")
}

func TestNewFilter_ExtraWords(t *testing.T) {
	f := NewFilter("banana", "  ", "Pão")

	assert.True(t, f.ContainsProfanity("B4N4N4"))
	assert.True(t, f.ContainsProfanity("um pao quente"))
	assert.True(t, f.ContainsProfanity("merda"), "built-in words stay active")
	assert.False(t, Default.ContainsProfanity("banana"), "extra words do not leak into Default")
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantMsg  string
	}{
		{"too short", "Jo", "at least 3"},
		{"short after trim", "  ab   ", "at least 3"},
		{"too long", strings.Repeat("a", 21), "at most 20"},
		{"accented charset", "João 2", "only letters"},
		{"symbol charset", "maria_silva", "only letters"},
		{"profanity", "Merda Total", "not allowed"},
		{"leet profanity", "p0rr4 man", "not allowed"},
		{"valid", "Maria Silva", ""},
		{"valid digits", "Pedro 123", ""},
		{"boundary max", strings.Repeat("b", 20), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "username", verr.Field)
			assert.Contains(t, verr.Message, tt.wantMsg)
		})
	}
}

func TestValidatePrayerRequest(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"too short", "  ore   ", "at least 10"},
		{"too long", strings.Repeat("a", 701), "at most 700"},
		{"link", "please visit https://example.org for more", "links"},
		{"punctuation allowed", "pray for my kids, all of them are sick", ""},
		{"has digit", "pray for my 2 kids please", "numbers"},
		{"profanity", "what a merda week, please pray for me", "respectful"},
		{"valid", "Please pray for my family this week", ""},
	}

	f := NewFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ValidatePrayerRequest(tt.content)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
