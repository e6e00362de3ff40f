// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLicenseKeyFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

	key, err := GenerateLicenseKey()
	require.NoError(t, err)
	assert.Len(t, key, 19)
	assert.Regexp(t, pattern, key)
}

func TestGenerateLicenseKeyUniqueness(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		key, err := GenerateLicenseKey()
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key generated: %s", key)
		seen[key] = true
	}
}

func TestGenerateTransactionID(t *testing.T) {
	id := GenerateTransactionID()
	assert.True(t, strings.HasPrefix(id, "txn_"))
	assert.Greater(t, len(id), len("txn_"))
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(48)
	require.NoError(t, err)
	assert.Len(t, s, 48)
	assert.Regexp(t, `^[a-zA-Z0-9]+$`, s)

	other, err := GenerateRandomString(48)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestHashString(t *testing.T) {
	h := HashString("reset-token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashString("reset-token"))
	assert.NotEqual(t, h, HashString("other-token"))
}
