package domain

import "time"

// Room is the shared game state for one puzzle: the ordered found-word
// ledger and the running score across all players. Rooms are created lazily
// and live until an explicit reset.
type Room struct {
	PuzzleDate string    `json:"puzzleDate"`
	FoundWords []string  `json:"foundWords"`
	Score      int       `json:"score"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasWord reports whether word is already in the found-word ledger.
func (r *Room) HasWord(word string) bool {
	for _, w := range r.FoundWords {
		if w == word {
			return true
		}
	}
	return false
}
