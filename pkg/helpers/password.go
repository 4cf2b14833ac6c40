package helpers

import (
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters; changing any of them invalidates every stored hash.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// PasswordHasher derives a deterministic argon2id hash from a plain password
// and a deployment-wide salt, so the result can be matched in a WHERE clause.
type PasswordHasher struct {
	salt []byte
}

func NewPasswordHasher(salt string) *PasswordHasher {
	return &PasswordHasher{salt: []byte(salt)}
}

// Hash returns the base64 (raw, std alphabet) argon2id digest of plain.
func (h *PasswordHasher) Hash(plain string) string {
	key := argon2.IDKey([]byte(plain), h.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}
