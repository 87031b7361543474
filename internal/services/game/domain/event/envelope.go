package event

import (
	"encoding/json"
	"fmt"
	"slices"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

// Envelope is the stable structured form of an event. Field names are part
// of the save-file and wire contract.
type Envelope struct {
	Seq         uint64   `json:"seq,omitempty"`
	Turn        int      `json:"turn"`
	Player      string   `json:"player,omitempty"`
	Kind        string   `json:"kind"`
	Legion      string   `json:"legion,omitempty"`
	Added       string   `json:"added,omitempty"`
	Recruiter   string   `json:"recruiter,omitempty"`
	Donor       string   `json:"donor,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Revealed    []string `json:"revealed"`
}

// Encode returns the envelope of e.
func Encode(e Event) Envelope {
	env := Envelope{
		Seq:         e.seq,
		Turn:        e.turn,
		Kind:        string(e.kind),
		Legion:      e.legionID,
		Added:       e.added.Name(),
		Recruiter:   e.recruiter.Name(),
		Donor:       e.donorID,
		Destination: e.destination,
		Reason:      string(e.reason),
		Revealed:    creature.Names(e.RevealedCreatures()),
	}
	if e.hasPlayer {
		env.Player = e.player.Name()
	}
	if env.Revealed == nil {
		env.Revealed = []string{}
	}
	return env
}

// Decode rebuilds an event from its envelope and checks it against the
// disclosure table, including the recorded disclosure list. Every failure
// wraps ErrCorrupt.
func Decode(env Envelope) (Event, error) {
	e := Event{
		seq:         env.Seq,
		turn:        env.Turn,
		kind:        Kind(env.Kind),
		legionID:    env.Legion,
		donorID:     env.Donor,
		destination: env.Destination,
		reason:      reveal.Reason(env.Reason),
	}
	if env.Player != "" {
		e.player = legion.NewPlayerRef(env.Player)
		e.hasPlayer = true
	}
	var err error
	if env.Added != "" {
		if e.added, err = creature.New(env.Added); err != nil {
			return Event{}, fmt.Errorf("%w: added: %w", ErrCorrupt, err)
		}
	}
	if env.Recruiter != "" {
		if e.recruiter, err = creature.New(env.Recruiter); err != nil {
			return Event{}, fmt.Errorf("%w: recruiter: %w", ErrCorrupt, err)
		}
	}
	if err := Validate(e); err != nil {
		return Event{}, err
	}

	revealed, err := creature.ParseNames(env.Revealed)
	if err != nil {
		return Event{}, fmt.Errorf("%w: revealed: %w", ErrCorrupt, err)
	}
	if !slices.Equal(revealed, e.RevealedCreatures()) {
		return Event{}, fmt.Errorf("%w: %s event disclosed %v, table allows %v",
			ErrCorrupt, e.kind, env.Revealed, creature.Names(e.RevealedCreatures()))
	}
	return e, nil
}

// MarshalJSON encodes the event as its envelope.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(Encode(e))
}

// UnmarshalJSON decodes and validates an envelope.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	decoded, err := Decode(env)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Struct converts the envelope into a protobuf Struct for transports that
// speak protobuf.
func (env Envelope) Struct() (*structpb.Struct, error) {
	revealed := make([]any, len(env.Revealed))
	for i, name := range env.Revealed {
		revealed[i] = name
	}
	fields := map[string]any{
		"turn":     env.Turn,
		"kind":     env.Kind,
		"revealed": revealed,
	}
	optional := map[string]string{
		"player":      env.Player,
		"legion":      env.Legion,
		"added":       env.Added,
		"recruiter":   env.Recruiter,
		"donor":       env.Donor,
		"destination": env.Destination,
		"reason":      env.Reason,
	}
	for key, value := range optional {
		if value != "" {
			fields[key] = value
		}
	}
	if env.Seq > 0 {
		fields["seq"] = env.Seq
	}
	return structpb.NewStruct(fields)
}
