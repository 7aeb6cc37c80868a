package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	VerificationTokenTTL = time.Hour
	ResetTokenTTL        = 15 * time.Minute

	tokenBytes = 32
)

// NewOpaqueToken 生成一次性令牌；raw 只出现在邮件链接里，库里只存 hash
func NewOpaqueToken() (raw, hash string, err error) {
	b := make([]byte, tokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashToken(raw), nil
}

func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
