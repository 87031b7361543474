package integrity

import (
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
)

// Link is the integrity record stored beside an event.
type Link struct {
	EventHash      string
	PrevHash       string
	ChainHash      string
	Signature      string
	SignatureKeyID string
}

// Seal hashes evt, chains it to prevHash and signs the chain hash.
func (k *Keyring) Seal(gameID string, evt event.Event, prevHash string) (Link, error) {
	eventHash, err := event.Hash(evt)
	if err != nil {
		return Link{}, fmt.Errorf("hash event: %w", err)
	}
	chainHash, err := event.ChainHash(evt, prevHash)
	if err != nil {
		return Link{}, fmt.Errorf("chain hash: %w", err)
	}
	sig, keyID, err := k.SignChainHash(gameID, chainHash)
	if err != nil {
		return Link{}, fmt.Errorf("sign chain hash: %w", err)
	}
	return Link{
		EventHash:      eventHash,
		PrevHash:       prevHash,
		ChainHash:      chainHash,
		Signature:      sig,
		SignatureKeyID: keyID,
	}, nil
}

// Check recomputes the hashes of evt and verifies link against them.
func (k *Keyring) Check(gameID string, evt event.Event, link Link) error {
	eventHash, err := event.Hash(evt)
	if err != nil {
		return fmt.Errorf("hash event: %w", err)
	}
	if eventHash != link.EventHash {
		return fmt.Errorf("event hash mismatch at seq %d", evt.Seq())
	}
	chainHash, err := event.ChainHash(evt, link.PrevHash)
	if err != nil {
		return fmt.Errorf("chain hash: %w", err)
	}
	if chainHash != link.ChainHash {
		return fmt.Errorf("chain hash mismatch at seq %d", evt.Seq())
	}
	return k.VerifyChainHash(gameID, chainHash, link.Signature, link.SignatureKeyID)
}
