package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAcceptKey(t *testing.T) {
	// Known handshake pair from RFC 6455 section 1.3.
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", GenerateAcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestGenerateNewSessionID(t *testing.T) {
	first := GenerateNewSessionID()
	second := GenerateNewSessionID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code := GenerateRoomCode()

		assert.Len(t, code, roomCodeLength)
		for _, char := range code {
			assert.True(t, strings.ContainsRune(roomCodeAlphabet, char), "unexpected character %q in %s", char, code)
		}

		seen[code] = true
	}

	// 32^6 codes make a collision across 50 draws effectively impossible.
	assert.Greater(t, len(seen), 1)
}
