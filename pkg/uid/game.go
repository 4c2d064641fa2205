package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateGameID returns 32 random hex characters.
func GenerateGameID() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
