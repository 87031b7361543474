package game

import "strings"

// Player is a participant in the game.
type Player struct {
	name  string
	score int
}

// NewPlayer creates a player with a starting score.
func NewPlayer(name string, score int) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return &Player{name: name, score: score}, nil
}

// Name returns the player name.
func (p *Player) Name() string { return p.name }

// Score returns the current score.
func (p *Player) Score() int { return p.score }

// AddScore adds points, e.g. after a battle.
func (p *Player) AddScore(points int) {
	p.score += points
}
