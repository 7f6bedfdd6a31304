package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// HashRefreshToken produz o hash SHA-256 (base64url) persistido no cadastro do
// eleitor. O token cru nunca é armazenado.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey monta a chave que espelha o estado do refresh no Redis.
func RefreshRedisKey(hash string) string {
	return fmt.Sprintf("refresh:%s", hash)
}
