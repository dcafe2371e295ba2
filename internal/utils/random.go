package utils

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateRequestID returns a 16 character hex ID for log correlation.
func GenerateRequestID() string {
	return randomHex(8)
}

// GenerateMessageID returns an ID for a session message.
func GenerateMessageID() string {
	return "msg_" + randomHex(6)
}

// randomHex hex-encodes the first n bytes (n <= 16) of a random v4 UUID.
func randomHex(n int) string {
	id := uuid.New()
	return hex.EncodeToString(id[:n])
}
