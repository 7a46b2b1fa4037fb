package domain

import (
	"strings"
	"time"
)

// Answer is the scoring record for a single valid word.
type Answer struct {
	Points    int  `json:"points"`
	IsPangram bool `json:"isPangram"`
}

// Puzzle is one day's letter set and its closed answer dictionary.
// A puzzle is immutable once published; Answers is the complete set of
// valid solutions and acts as the oracle for submission validity.
type Puzzle struct {
	Date       string            `json:"date"`
	Center     string            `json:"center"`
	Outer      []string          `json:"outer"`
	Answers    map[string]Answer `json:"answers"`
	TotalScore int               `json:"totalScore"`
	FetchedAt  time.Time         `json:"fetchedAt"`
}

// Alphabet returns the puzzle's full letter set: the center letter followed
// by the outer letters in their published order.
func (p *Puzzle) Alphabet() string {
	return p.Center + strings.Join(p.Outer, "")
}

// Answer returns the scoring record for word, if word is a valid solution.
func (p *Puzzle) Answer(word string) (Answer, bool) {
	a, ok := p.Answers[word]
	return a, ok
}

// LetterCounts returns the number of answers per starting letter.
// Used for hints; it does not expose the answer words themselves.
func (p *Puzzle) LetterCounts() map[string]int {
	counts := make(map[string]int)
	for word := range p.Answers {
		counts[word[:1]]++
	}
	return counts
}
