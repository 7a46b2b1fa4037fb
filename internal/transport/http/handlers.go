package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chris-cant-code/spellingbee/internal/domain"
)

// Response is a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListPuzzlesResponse is the response for listing puzzle dates.
type ListPuzzlesResponse struct {
	Dates []string `json:"dates"`
}

// GetPuzzleResponse describes a puzzle without exposing its answers.
// LetterCounts is the number of answers per starting letter, used for hints.
type GetPuzzleResponse struct {
	Date         string         `json:"date"`
	Center       string         `json:"center"`
	Outer        []string       `json:"outer"`
	TotalScore   int            `json:"totalScore"`
	LetterCounts map[string]int `json:"letterCounts"`
}

// NextRankInfo names the tier above the current one and the minimum score
// needed to reach it.
type NextRankInfo struct {
	Name        string `json:"name"`
	ScoreNeeded int    `json:"scoreNeeded"`
}

// GetRoomResponse is the response for room state.
type GetRoomResponse struct {
	Date       string        `json:"date"`
	FoundWords []string      `json:"foundWords"`
	Score      int           `json:"score"`
	TotalScore int           `json:"totalScore"`
	Rank       string        `json:"rank"`
	NextRank   *NextRankInfo `json:"nextRank"`
}

// ResetRoomResponse is the response for a room reset.
type ResetRoomResponse struct {
	Reset bool `json:"reset"`
}

// HealthResponse is the response for the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for the stats endpoint.
type StatsResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// handleListPuzzles handles GET /api/puzzles
func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	dates, err := s.puzzles.ListPuzzleDates()
	if err != nil {
		s.logger.Error("list puzzles failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list puzzles")
		return
	}

	s.sendSuccess(w, &ListPuzzlesResponse{Dates: dates})
}

// handleGetPuzzle handles GET /api/puzzles/{date}
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	puzzle, err := s.puzzles.GetPuzzle(date)
	if err != nil {
		if errors.Is(err, domain.ErrPuzzleNotFound) {
			s.sendError(w, http.StatusNotFound, "PUZZLE_NOT_FOUND", "Puzzle not found")
		} else {
			s.logger.Error("get puzzle failed", "date", date, "error", err)
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendSuccess(w, &GetPuzzleResponse{
		Date:         puzzle.Date,
		Center:       puzzle.Center,
		Outer:        puzzle.Outer,
		TotalScore:   puzzle.TotalScore,
		LetterCounts: puzzle.LetterCounts(),
	})
}

// handleGetRoom handles GET /api/rooms/{date}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	puzzle, err := s.puzzles.GetPuzzle(date)
	if err != nil {
		if errors.Is(err, domain.ErrPuzzleNotFound) {
			s.sendError(w, http.StatusNotFound, "PUZZLE_NOT_FOUND", "Puzzle not found")
		} else {
			s.logger.Error("get room failed", "date", date, "error", err)
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	room, err := s.rooms.EnsureRoom(date)
	if err != nil {
		s.logger.Error("ensure room failed", "date", date, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	resp := &GetRoomResponse{
		Date:       date,
		FoundWords: room.FoundWords,
		Score:      room.Score,
		TotalScore: puzzle.TotalScore,
		Rank:       domain.RankFor(room.Score, puzzle.TotalScore),
	}
	if name, needed, ok := domain.NextRank(room.Score, puzzle.TotalScore); ok {
		resp.NextRank = &NextRankInfo{Name: name, ScoreNeeded: needed}
	}

	s.sendSuccess(w, resp)
}

// handleResetRoom handles POST /api/rooms/{date}/reset
func (s *Server) handleResetRoom(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	exists, err := s.puzzles.PuzzleExists(date)
	if err != nil {
		s.logger.Error("reset room failed", "date", date, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	if !exists {
		s.sendError(w, http.StatusNotFound, "PUZZLE_NOT_FOUND", "Puzzle not found")
		return
	}

	if err := s.hub.ResetRoom(date); err != nil {
		s.logger.Error("reset room failed", "date", date, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset room")
		return
	}

	s.sendSuccess(w, &ResetRoomResponse{Reset: true})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:  s.hub.ActiveRooms(),
		TotalPlayers: s.hub.TotalPlayers(),
	})
}

// sendSuccess sends a successful JSON response.
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response.
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
