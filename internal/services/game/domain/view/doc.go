// Package view models what a remote client may know about a game it does
// not own: legion heights, locations, and only those creatures that events
// disclosed.
//
// A client folds events into a Public view strictly in sequence order. The
// Resequencer restores that order for transports that deliver out of
// order.
package view
