package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher("salt-a")

	first := h.Hash("correct horse")
	assert.Equal(t, first, h.Hash("correct horse"), "hash must be deterministic for lookups")
	assert.NotEqual(t, first, h.Hash("correct horsE"))
	assert.NotEqual(t, first, NewPasswordHasher("salt-b").Hash("correct horse"))
	assert.NotContains(t, first, "correct horse")
	// 32 bytes in raw base64
	assert.Len(t, first, 43)
}
