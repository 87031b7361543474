// Package integrity signs and verifies the chain hashes that make a stored
// game history tamper-evident.
//
// Event and chain hashes are computed by the event package; this package adds
// per-game HMAC keys derived from rotating root keys.
package integrity
