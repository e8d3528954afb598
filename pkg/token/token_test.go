package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLength(t *testing.T) {
	tok, err := Generate(64)
	require.NoError(t, err)
	assert.Len(t, tok, 64)
}

func TestGenerateEnforcesMinimum(t *testing.T) {
	tok, err := Generate(8)
	require.NoError(t, err)
	assert.Len(t, tok, MinLength)
}

func TestGenerateAlphabet(t *testing.T) {
	tok, err := Generate(128)
	require.NoError(t, err)
	for _, r := range tok {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
}

func TestGenerateSymbolDistribution(t *testing.T) {
	counts := make(map[rune]int, len(alphabet))
	for i := 0; i < 50; i++ {
		tok, err := Generate(128)
		require.NoError(t, err)
		require.Len(t, tok, 128)
		for _, r := range tok {
			counts[r]++
		}
	}
	// 6400 uniform draws over 62 symbols leave every symbol present
	// with overwhelming probability.
	for _, r := range alphabet {
		assert.Positive(t, counts[r], "symbol %q never drawn", r)
	}
}

func TestGenerateUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := Generate(MinLength)
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token generated")
		seen[tok] = struct{}{}
	}
}
