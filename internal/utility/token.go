package utility

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// InviteTokenBytes số byte ngẫu nhiên của một token lời mời (256 bit)
const InviteTokenBytes = 32

// NewOpaqueToken sinh token ngẫu nhiên dạng URL-safe base64 không padding
func NewOpaqueToken(n int) (string, error) {
	if n <= 0 {
		n = InviteTokenBytes
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken trả về SHA-256 hex của token. Chỉ hash được lưu trong store.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
