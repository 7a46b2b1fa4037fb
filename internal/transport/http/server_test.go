package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-cant-code/spellingbee/internal/app"
	"github.com/chris-cant-code/spellingbee/internal/config"
	"github.com/chris-cant-code/spellingbee/internal/domain"
	"github.com/chris-cant-code/spellingbee/internal/store"
)

const testDate = "2026-08-30"

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.UpsertPuzzle(&domain.Puzzle{
		Date:   testDate,
		Center: "A",
		Outer:  []string{"B", "C", "D", "E", "F", "G"},
		Answers: map[string]domain.Answer{
			"ABCDEFG": {Points: 14, IsPangram: true},
			"BEAD":    {Points: 1},
		},
		TotalScore: 15,
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewRoomHub(s, s, logger)
	t.Cleanup(hub.Close)

	cfg := &config.Config{}
	cfg.Server.Port = "0"
	return NewServer(cfg, hub, s, s, logger), s
}

func doRequest(t *testing.T, srv *Server, method, path string) (*httptest.ResponseRecorder, *Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, &resp
}

func dataAs(t *testing.T, resp *Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	var health HealthResponse
	dataAs(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
}

func TestListPuzzles(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/puzzles")
	assert.Equal(t, http.StatusOK, rec.Code)

	var list ListPuzzlesResponse
	dataAs(t, resp, &list)
	assert.Equal(t, []string{testDate}, list.Dates)
}

func TestGetPuzzleHidesAnswers(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/puzzles/"+testDate)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "BEAD", "answers must never leave the server")

	var puzzle GetPuzzleResponse
	dataAs(t, resp, &puzzle)
	assert.Equal(t, "A", puzzle.Center)
	assert.Equal(t, []string{"B", "C", "D", "E", "F", "G"}, puzzle.Outer)
	assert.Equal(t, 15, puzzle.TotalScore)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, puzzle.LetterCounts)
}

func TestGetPuzzleNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/puzzles/1999-01-01")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PUZZLE_NOT_FOUND", resp.Error.Code)
}

func TestGetRoomCreatesAndReports(t *testing.T) {
	srv, s := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/rooms/"+testDate)
	assert.Equal(t, http.StatusOK, rec.Code)

	var room GetRoomResponse
	dataAs(t, resp, &room)
	assert.Empty(t, room.FoundWords)
	assert.Zero(t, room.Score)
	assert.Equal(t, 15, room.TotalScore)
	assert.Equal(t, "Beginner", room.Rank)
	require.NotNil(t, room.NextRank)
	assert.Equal(t, "Good Start", room.NextRank.Name)
	assert.Equal(t, 1, room.NextRank.ScoreNeeded)

	// Progress shows up on the next read.
	_, err := s.CommitFoundWord(testDate, "ABCDEFG", 14)
	require.NoError(t, err)
	_, err = s.CommitFoundWord(testDate, "BEAD", 1)
	require.NoError(t, err)

	_, resp = doRequest(t, srv, http.MethodGet, "/api/rooms/"+testDate)
	dataAs(t, resp, &room)
	assert.Equal(t, []string{"ABCDEFG", "BEAD"}, room.FoundWords)
	assert.Equal(t, 15, room.Score)
	assert.Equal(t, "Queen Bee", room.Rank)
	assert.Nil(t, room.NextRank, "no tier above Queen Bee")
}

func TestGetRoomUnknownPuzzle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/rooms/1999-01-01")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PUZZLE_NOT_FOUND", resp.Error.Code)
}

func TestResetRoom(t *testing.T) {
	srv, s := newTestServer(t)

	_, err := s.EnsureRoom(testDate)
	require.NoError(t, err)
	_, err = s.CommitFoundWord(testDate, "BEAD", 1)
	require.NoError(t, err)

	rec, resp := doRequest(t, srv, http.MethodPost, "/api/rooms/"+testDate+"/reset")
	assert.Equal(t, http.StatusOK, rec.Code)

	var reset ResetRoomResponse
	dataAs(t, resp, &reset)
	assert.True(t, reset.Reset)

	room, err := s.GetRoom(testDate)
	require.NoError(t, err)
	assert.Empty(t, room.FoundWords)
	assert.Zero(t, room.Score)
}

func TestResetRoomUnknownPuzzle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodPost, "/api/rooms/1999-01-01/reset")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PUZZLE_NOT_FOUND", resp.Error.Code)
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/stats")
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats StatsResponse
	dataAs(t, resp, &stats)
	assert.Zero(t, stats.ActiveRooms)
	assert.Zero(t, stats.TotalPlayers)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/puzzles", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
