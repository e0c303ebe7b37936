package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/collab-shopping/internal/utils"
)

func TestNewJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := utils.NewJoinCode()
		require.NoError(t, err)
		assert.Len(t, code, utils.JoinCodeLength)
		for _, r := range code {
			// Ambiguous glyphs are excluded from the alphabet.
			assert.NotContains(t, "0O1IL", string(r))
			assert.True(t, strings.ContainsRune("ABCDEFGHJKMNPQRSTUVWXYZ23456789", r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	// Collisions in 200 draws over a 31^6 space would point at a broken generator.
	assert.Len(t, seen, 200)
}
