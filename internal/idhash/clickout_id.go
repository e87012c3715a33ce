package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeClickoutID computes a deterministic clickout identifier using
// SHA256. Formula: SHA256(user_id|session_id|timestamp|step).
// Returns hex-encoded hash (64 characters).
//
// Shard outputs are merged by this identifier, so it must depend only on
// the event itself, never on processing order or wall-clock time.
func ComputeClickoutID(userID, sessionID string, timestamp int64, step int) string {
	data := fmt.Sprintf("%s|%s|%d|%d", userID, sessionID, timestamp, step)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
