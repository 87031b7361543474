package integrity

import (
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyringRequired indicates signing or verification without a keyring.
	ErrKeyringRequired = errors.New("hmac keyring is not configured")
	// ErrSignatureMismatch indicates a chain hash whose signature does not verify.
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Keyring stores root HMAC keys and the active key id.
type Keyring struct {
	keys        map[string][]byte
	activeKeyID string
}

// NewKeyring constructs a keyring for HMAC signing and verification.
func NewKeyring(keys map[string][]byte, activeKeyID string) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("hmac keys are required")
	}
	activeKeyID = strings.TrimSpace(activeKeyID)
	if activeKeyID == "" {
		return nil, fmt.Errorf("active hmac key id is required")
	}
	if _, ok := keys[activeKeyID]; !ok {
		return nil, fmt.Errorf("active hmac key id %q is not configured", activeKeyID)
	}
	copied := make(map[string][]byte, len(keys))
	for id, key := range keys {
		copied[id] = append([]byte(nil), key...)
	}
	return &Keyring{keys: copied, activeKeyID: activeKeyID}, nil
}

// ActiveKeyID returns the configured signing key id.
func (k *Keyring) ActiveKeyID() string {
	if k == nil {
		return ""
	}
	return k.activeKeyID
}

// SignChainHash signs a chain hash with the active key and returns the
// signature with the id of the key used.
func (k *Keyring) SignChainHash(gameID, chainHash string) (string, string, error) {
	if k == nil {
		return "", "", ErrKeyringRequired
	}
	key, err := deriveGameKey(k.keys[k.activeKeyID], gameID)
	if err != nil {
		return "", "", err
	}
	return hmacSHA256Hex(key, chainHash), k.activeKeyID, nil
}

// VerifyChainHash validates a chain hash signature made with keyID.
func (k *Keyring) VerifyChainHash(gameID, chainHash, signature, keyID string) error {
	if k == nil {
		return ErrKeyringRequired
	}
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return fmt.Errorf("signature key id is required")
	}
	rootKey, ok := k.keys[keyID]
	if !ok {
		return fmt.Errorf("signature key id %q is unknown", keyID)
	}
	key, err := deriveGameKey(rootKey, gameID)
	if err != nil {
		return err
	}
	expected := hmacSHA256Hex(key, chainHash)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func deriveGameKey(rootKey []byte, gameID string) ([]byte, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}
	key, err := hkdf.Key(sha256.New, rootKey, nil, "game:"+gameID, 32)
	if err != nil {
		return nil, fmt.Errorf("derive game key: %w", err)
	}
	return key, nil
}

func hmacSHA256Hex(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
