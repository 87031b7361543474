// Package action describes pending mutations of a single legion.
//
// Actions are pure values built by the rules engine at decision time:
//   - they carry only what the mutation needs (legion, creature, donor, hex),
//   - they never mutate legion or player state themselves,
//   - and they are discarded once the engine has applied them and recorded the
//     matching event.
//
// Add-creature actions implement reveal.Revealing so that callers learn what
// became public without touching the concealed legion contents.
package action
