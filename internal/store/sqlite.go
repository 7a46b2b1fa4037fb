package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chris-cant-code/spellingbee/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS puzzles (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	date        TEXT UNIQUE NOT NULL,
	center      TEXT NOT NULL,
	outer       TEXT NOT NULL,
	answers     TEXT NOT NULL,
	total_score INTEGER NOT NULL DEFAULT 0,
	fetched_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS game_rooms (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	puzzle_date TEXT UNIQUE NOT NULL,
	found_words TEXT NOT NULL DEFAULT '[]',
	score       INTEGER NOT NULL DEFAULT 0,
	updated_at  INTEGER NOT NULL
);
`

// SQLiteStore implements PuzzleStore and RoomStore on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if missing) the SQLite database at path and applies
// the schema. WAL journaling and a busy timeout keep concurrent room commits
// from tripping over each other.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ------------------------------ puzzles ------------------------------------

// GetPuzzle loads the puzzle for date, or domain.ErrPuzzleNotFound.
func (s *SQLiteStore) GetPuzzle(date string) (*domain.Puzzle, error) {
	row := s.db.QueryRow(
		`SELECT date, center, outer, answers, total_score, fetched_at FROM puzzles WHERE date = ?`,
		date,
	)

	var p domain.Puzzle
	var outer, answers string
	var fetched int64
	if err := row.Scan(&p.Date, &p.Center, &outer, &answers, &p.TotalScore, &fetched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPuzzleNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(outer), &p.Outer); err != nil {
		return nil, fmt.Errorf("decode outer letters for %s: %w", date, err)
	}
	if err := json.Unmarshal([]byte(answers), &p.Answers); err != nil {
		return nil, fmt.Errorf("decode answers for %s: %w", date, err)
	}
	p.FetchedAt = time.Unix(fetched, 0).UTC()

	return &p, nil
}

// ListPuzzleDates returns all puzzle dates, most recent first.
func (s *SQLiteStore) ListPuzzleDates() ([]string, error) {
	rows, err := s.db.Query(`SELECT date FROM puzzles ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// PuzzleExists reports whether a puzzle is stored for date.
func (s *SQLiteStore) PuzzleExists(date string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM puzzles WHERE date = ?`, date).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpsertPuzzle inserts or replaces the puzzle for its date.
func (s *SQLiteStore) UpsertPuzzle(p *domain.Puzzle) error {
	outer, err := json.Marshal(p.Outer)
	if err != nil {
		return fmt.Errorf("encode outer letters: %w", err)
	}
	answers, err := json.Marshal(p.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	fetched := p.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now().UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO puzzles (date, center, outer, answers, total_score, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			center = excluded.center,
			outer = excluded.outer,
			answers = excluded.answers,
			total_score = excluded.total_score,
			fetched_at = excluded.fetched_at`,
		p.Date, p.Center, string(outer), string(answers), p.TotalScore, fetched.Unix(),
	)
	return err
}

// ------------------------------- rooms -------------------------------------

// rowScanner covers *sql.Row from both the pool and transactions.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var r domain.Room
	var found string
	var updated int64
	if err := row.Scan(&r.PuzzleDate, &found, &r.Score, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(found), &r.FoundWords); err != nil {
		return nil, fmt.Errorf("decode found words for %s: %w", r.PuzzleDate, err)
	}
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	return &r, nil
}

const selectRoom = `SELECT puzzle_date, found_words, score, updated_at FROM game_rooms WHERE puzzle_date = ?`

// GetRoom loads the room for date, or domain.ErrRoomNotFound.
func (s *SQLiteStore) GetRoom(date string) (*domain.Room, error) {
	return scanRoom(s.db.QueryRow(selectRoom, date))
}

// EnsureRoom creates an empty room for date if none exists and returns the
// current room. Safe to call repeatedly.
func (s *SQLiteStore) EnsureRoom(date string) (*domain.Room, error) {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO game_rooms (puzzle_date, found_words, score, updated_at) VALUES (?, '[]', 0, ?)`,
		date, time.Now().Unix(),
	)
	if err != nil {
		return nil, err
	}
	return s.GetRoom(date)
}

// CommitFoundWord atomically appends word to the room's ledger and adds
// points to its score. A word already in the ledger is rejected with
// domain.ErrAlreadyFound and the room is left untouched.
func (s *SQLiteStore) CommitFoundWord(date, word string, points int) (*domain.Room, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	room, err := scanRoom(tx.QueryRow(selectRoom, date))
	if err != nil {
		return nil, err
	}
	if room.HasWord(word) {
		return nil, domain.ErrAlreadyFound
	}

	room.FoundWords = append(room.FoundWords, word)
	room.Score += points
	room.UpdatedAt = time.Now().UTC()

	found, err := json.Marshal(room.FoundWords)
	if err != nil {
		return nil, fmt.Errorf("encode found words: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE game_rooms SET found_words = ?, score = ?, updated_at = ? WHERE puzzle_date = ?`,
		string(found), room.Score, room.UpdatedAt.Unix(), date,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return room, nil
}

// ResetRoom clears the room's ledger and score. A missing room is a no-op.
func (s *SQLiteStore) ResetRoom(date string) error {
	_, err := s.db.Exec(
		`UPDATE game_rooms SET found_words = '[]', score = 0, updated_at = ? WHERE puzzle_date = ?`,
		time.Now().Unix(), date,
	)
	return err
}
