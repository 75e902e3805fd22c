package service

import "errors"

// Sentinel errors returned by Service operations.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrNoStore          = errors.New("no player store configured")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNoLink           = errors.New("no link found")
	ErrNotEnoughPlayers = errors.New("not enough players")
)
