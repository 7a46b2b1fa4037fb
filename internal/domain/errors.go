package domain

import "errors"

// Validation errors, reported to the submitting connection only.
var (
	ErrTooShort      = errors.New("word is shorter than four letters")
	ErrMissingCenter = errors.New("word does not use the center letter")
	ErrBadLetters    = errors.New("word uses letters outside the puzzle")
	ErrAlreadyFound  = errors.New("word was already found")
	ErrNotInList     = errors.New("word is not in the answer list")
)

// Resource-absence errors.
var (
	ErrPuzzleNotFound = errors.New("puzzle not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotInRoom      = errors.New("connection has not joined a room")
)
