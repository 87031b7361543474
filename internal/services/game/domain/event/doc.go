// Package event defines the permanent, replayable record of a committed
// legion mutation.
//
// Events mirror actions one to one and add the turn and the acting player.
// They are immutable values: every field is unexported and set once by a
// constructor, so an event can be handed to history, persistence and any
// number of reader goroutines without synchronization.
//
// Envelope is the stable structured form used for save files, logs and
// network transmission. Decoding an envelope re-checks it against the
// disclosure table; a mismatch is history corruption, never something to
// skip.
package event
