package event

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Hash returns the SHA-256 of the RFC 8785 canonical JSON of e's envelope,
// so every process computes the same digest for the same event.
func Hash(e Event) (string, error) {
	raw, err := json.Marshal(Encode(e))
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize envelope: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// ChainHash links e to the chain hash of its predecessor. The first event of
// a game has an empty prevHash.
func ChainHash(e Event, prevHash string) (string, error) {
	eventHash, err := Hash(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(prevHash + ":" + eventHash))
	return hex.EncodeToString(sum[:]), nil
}
