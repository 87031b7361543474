package game

import "sync"

// Context carries the mutable rules state that belongs to one game rather
// than to the process. Each State owns its own Context.
type Context struct {
	Scores *ScoreLedger
}

// NewContext creates an empty rules context.
func NewContext() *Context {
	return &Context{Scores: NewScoreLedger()}
}

func (c *Context) clone() *Context {
	if c == nil {
		return NewContext()
	}
	return &Context{Scores: c.Scores.clone()}
}

// ScoreLedger remembers each player's score at their last recruitment.
// Custom recruiter rules use the difference to grant extra recruits after
// a score change.
type ScoreLedger struct {
	mu     sync.Mutex
	marked map[string]int
}

// NewScoreLedger creates an empty ledger.
func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{marked: make(map[string]int)}
}

// MarkRecruit records score as the player's score at their latest recruit.
func (s *ScoreLedger) MarkRecruit(player string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked[player] = score
}

// ScoreSince returns how far score has moved since the player's last
// recruit. A player who never recruited is measured from zero.
func (s *ScoreLedger) ScoreSince(player string, score int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return score - s.marked[player]
}

// Marked returns the recorded score and whether the player ever recruited.
func (s *ScoreLedger) Marked(player string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.marked[player]
	return score, ok
}

func (s *ScoreLedger) clone() *ScoreLedger {
	out := NewScoreLedger()
	if s == nil {
		return out
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for player, score := range s.marked {
		out.marked[player] = score
	}
	return out
}
