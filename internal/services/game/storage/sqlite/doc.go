// Package sqlite persists game histories in SQLite.
//
// Each game keeps its setup roster, an append-only journal of event
// envelopes linked by signed chain hashes, and a replay checkpoint. The
// journal is the only durable record of what happened; states are always
// rebuilt from it.
package sqlite
