// backend/pkg/utils/session.go
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// SessionTokenLength is the hex length of tokens issued by the auth
// collaborator.
const SessionTokenLength = 32

// GenerateSessionToken generates a new opaque session token.
func GenerateSessionToken() string {
	return GenerateRandomID(SessionTokenLength)
}

// GenerateRandomID generates a random hex ID
func GenerateRandomID(length int) string {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)[:length]
}

// ValidateSessionToken validates if a session token format is correct
func ValidateSessionToken(token string) bool {
	if len(token) != SessionTokenLength {
		return false
	}

	_, err := hex.DecodeString(strings.ToLower(token))
	return err == nil
}
