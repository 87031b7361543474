package integrity

import (
	"fmt"
	"strings"

	"github.com/cleka/colossus-titan-sub015/internal/platform/config"
)

const defaultKeyID = "v1"

// Env is the keyring configuration read from the environment. Keys holds a
// comma-separated list of id=secret pairs and takes precedence over Key.
type Env struct {
	Keys  string `env:"COLOSSUS_HISTORY_HMAC_KEYS"`
	Key   string `env:"COLOSSUS_HISTORY_HMAC_KEY"`
	KeyID string `env:"COLOSSUS_HISTORY_HMAC_KEY_ID" envDefault:"v1"`
}

// KeyringFromEnv loads the HMAC keyring configuration from environment variables.
func KeyringFromEnv() (*Keyring, error) {
	var cfg Env
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return cfg.Keyring()
}

// Keyring builds the keyring described by e.
func (e Env) Keyring() (*Keyring, error) {
	keyID := strings.TrimSpace(e.KeyID)
	if keyID == "" {
		keyID = defaultKeyID
	}

	keySpec := strings.TrimSpace(e.Keys)
	if keySpec == "" {
		raw := strings.TrimSpace(e.Key)
		if raw == "" {
			return nil, fmt.Errorf("COLOSSUS_HISTORY_HMAC_KEY is required")
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		value = strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid COLOSSUS_HISTORY_HMAC_KEYS entry %q", entry)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
