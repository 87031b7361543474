package game

import "errors"

var (
	// ErrNameRequired indicates a player without a name.
	ErrNameRequired = errors.New("player name is required")
	// ErrMarkerRequired indicates a legion without a marker.
	ErrMarkerRequired = errors.New("legion marker is required")
	// ErrDuplicatePlayer indicates a second player with the same name.
	ErrDuplicatePlayer = errors.New("player already exists")
	// ErrDuplicateLegion indicates a second legion with the same marker.
	ErrDuplicateLegion = errors.New("legion already exists")
	// ErrPlayerNotFound indicates an unknown player.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrLegionNotFound indicates an unknown legion marker.
	ErrLegionNotFound = errors.New("legion not found")
	// ErrCreatureMissing indicates a legion lacking a creature the rules
	// need it to hold.
	ErrCreatureMissing = errors.New("creature missing from legion")
	// ErrUndoMismatch indicates an undo with no matching earlier summon.
	ErrUndoMismatch = errors.New("undo does not match a pending summon")
	// ErrActionRequired indicates a nil action.
	ErrActionRequired = errors.New("action is required")
)
