package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-cant-code/spellingbee/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testPuzzle(date string) *domain.Puzzle {
	return &domain.Puzzle{
		Date:   date,
		Center: "A",
		Outer:  []string{"B", "C", "D", "E", "F", "G"},
		Answers: map[string]domain.Answer{
			"ABCDEFG": {Points: 14, IsPangram: true},
			"BEAD":    {Points: 1},
			"FACADE":  {Points: 6},
		},
		TotalScore: 21,
		FetchedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestUpsertAndGetPuzzle(t *testing.T) {
	s := newTestStore(t)
	p := testPuzzle("2026-08-30")

	require.NoError(t, s.UpsertPuzzle(p))

	got, err := s.GetPuzzle("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, p.Date, got.Date)
	assert.Equal(t, p.Center, got.Center)
	assert.Equal(t, p.Outer, got.Outer)
	assert.Equal(t, p.Answers, got.Answers)
	assert.Equal(t, p.TotalScore, got.TotalScore)
	assert.Equal(t, p.FetchedAt, got.FetchedAt)

	// Upserting the same date replaces the record.
	p.TotalScore = 42
	require.NoError(t, s.UpsertPuzzle(p))
	got, err = s.GetPuzzle("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 42, got.TotalScore)
}

func TestGetPuzzleMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPuzzle("1999-01-01")
	assert.ErrorIs(t, err, domain.ErrPuzzleNotFound)
}

func TestListPuzzleDates(t *testing.T) {
	s := newTestStore(t)

	for _, date := range []string{"2026-08-28", "2026-08-30", "2026-08-29"} {
		require.NoError(t, s.UpsertPuzzle(testPuzzle(date)))
	}

	dates, err := s.ListPuzzleDates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-30", "2026-08-29", "2026-08-28"}, dates, "most recent first")
}

func TestPuzzleExists(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertPuzzle(testPuzzle("2026-08-30")))

	exists, err := s.PuzzleExists("2026-08-30")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.PuzzleExists("1999-01-01")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnsureRoomIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	room, err := s.EnsureRoom("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", room.PuzzleDate)
	assert.Empty(t, room.FoundWords)
	assert.Zero(t, room.Score)

	again, err := s.EnsureRoom("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, room.FoundWords, again.FoundWords)
	assert.Equal(t, room.Score, again.Score)
}

func TestGetRoomMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRoom("2026-08-30")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestCommitFoundWord(t *testing.T) {
	s := newTestStore(t)
	_, err := s.EnsureRoom("2026-08-30")
	require.NoError(t, err)

	room, err := s.CommitFoundWord("2026-08-30", "BEAD", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"BEAD"}, room.FoundWords)
	assert.Equal(t, 1, room.Score)

	room, err = s.CommitFoundWord("2026-08-30", "FACADE", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"BEAD", "FACADE"}, room.FoundWords, "discovery order preserved")
	assert.Equal(t, 7, room.Score)
}

func TestCommitFoundWordRejectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	_, err := s.EnsureRoom("2026-08-30")
	require.NoError(t, err)

	_, err = s.CommitFoundWord("2026-08-30", "BEAD", 1)
	require.NoError(t, err)

	_, err = s.CommitFoundWord("2026-08-30", "BEAD", 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyFound)

	room, err := s.GetRoom("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, []string{"BEAD"}, room.FoundWords, "rejected commit must not mutate the room")
	assert.Equal(t, 1, room.Score)
}

func TestCommitFoundWordMissingRoom(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CommitFoundWord("2026-08-30", "BEAD", 1)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestResetRoom(t *testing.T) {
	s := newTestStore(t)
	_, err := s.EnsureRoom("2026-08-30")
	require.NoError(t, err)
	_, err = s.CommitFoundWord("2026-08-30", "BEAD", 1)
	require.NoError(t, err)

	require.NoError(t, s.ResetRoom("2026-08-30"))

	room, err := s.GetRoom("2026-08-30")
	require.NoError(t, err)
	assert.Empty(t, room.FoundWords)
	assert.Zero(t, room.Score)

	// A previously-found word can be committed again after a reset.
	room, err = s.CommitFoundWord("2026-08-30", "BEAD", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"BEAD"}, room.FoundWords)
	assert.Equal(t, 1, room.Score)
}
