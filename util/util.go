package util

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var hexHashPattern = regexp.MustCompile("^[0-9a-f]{64}$")

// IsHexHash 是否是有效的十六进制摘要
func IsHexHash(s string) bool {
	return hexHashPattern.MatchString(s)
}

// HashString returns the hex-encoded SHA-256 digest of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
