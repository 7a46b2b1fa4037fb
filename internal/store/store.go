package store

import "github.com/chris-cant-code/spellingbee/internal/domain"

// PuzzleStore is the durable contract for published puzzles. Reads serve the
// room engine; writes are performed by the external acquisition collaborator.
type PuzzleStore interface {
	GetPuzzle(date string) (*domain.Puzzle, error)
	ListPuzzleDates() ([]string, error)
	PuzzleExists(date string) (bool, error)
	UpsertPuzzle(p *domain.Puzzle) error
}

// RoomStore is the durable contract for shared room state. CommitFoundWord
// must reject a word that is already present without mutating the room, so
// the uniqueness invariant holds even outside the hub's serialization.
type RoomStore interface {
	GetRoom(date string) (*domain.Room, error)
	EnsureRoom(date string) (*domain.Room, error)
	CommitFoundWord(date, word string, points int) (*domain.Room, error)
	ResetRoom(date string) error
}
