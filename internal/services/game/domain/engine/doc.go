// Package engine is the commit pipeline of a game: it applies an action to
// the authoritative state, records the matching event at the current turn,
// appends it to history and the persistent journal, and notifies listeners.
//
// The Handler is the single writer of its history. Commits are serialised;
// an action that fails to apply leaves state and history untouched.
package engine
