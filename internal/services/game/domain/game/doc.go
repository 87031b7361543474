// Package game is the authoritative, hidden-information model of one game:
// players, their concealed legions and the rules that mutate them.
//
// Actions are applied with State.Apply; persisted events are folded back
// with State.Integrate. Both run the same mutation code, so replaying a
// history reproduces the state that committed it.
package game
