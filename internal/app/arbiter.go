package app

import (
	"strings"
	"unicode/utf8"

	"github.com/chris-cant-code/spellingbee/internal/domain"
	"github.com/chris-cant-code/spellingbee/internal/store"
)

// Arbiter validates word submissions against a puzzle and its room and
// commits accepted words, enforcing at-most-once credit per word per room.
// Callers must serialize Submit calls for the same room; calls for different
// rooms are independent.
type Arbiter struct {
	puzzles store.PuzzleStore
	rooms   store.RoomStore
}

// NewArbiter creates a new submission arbiter.
func NewArbiter(puzzles store.PuzzleStore, rooms store.RoomStore) *Arbiter {
	return &Arbiter{puzzles: puzzles, rooms: rooms}
}

// Submit runs the validation pipeline for rawWord against the puzzle's room.
// The checks run in a fixed order, short-circuiting on the first failure, so
// a word breaking several rules always reports the same reason. A failed
// submission never mutates the room.
func (a *Arbiter) Submit(puzzleDate, rawWord string) (*domain.SubmitResult, error) {
	puzzle, err := a.puzzles.GetPuzzle(puzzleDate)
	if err != nil {
		return nil, err
	}

	word := strings.ToUpper(strings.TrimSpace(rawWord))
	if utf8.RuneCountInString(word) < 4 {
		return nil, domain.ErrTooShort
	}
	if !strings.Contains(word, puzzle.Center) {
		return nil, domain.ErrMissingCenter
	}
	alphabet := puzzle.Alphabet()
	for _, r := range word {
		if !strings.ContainsRune(alphabet, r) {
			return nil, domain.ErrBadLetters
		}
	}

	room, err := a.rooms.EnsureRoom(puzzleDate)
	if err != nil {
		return nil, err
	}
	if room.HasWord(word) {
		return nil, domain.ErrAlreadyFound
	}

	answer, ok := puzzle.Answer(word)
	if !ok {
		return nil, domain.ErrNotInList
	}

	updated, err := a.rooms.CommitFoundWord(puzzleDate, word, answer.Points)
	if err != nil {
		return nil, err
	}

	return &domain.SubmitResult{
		Word:       word,
		Points:     answer.Points,
		IsPangram:  answer.IsPangram,
		NewScore:   updated.Score,
		TotalScore: puzzle.TotalScore,
		NewRank:    domain.RankFor(updated.Score, puzzle.TotalScore),
	}, nil
}
