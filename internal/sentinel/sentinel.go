package sentinel

import "errors"

// Sentinel dependency errors. Collaborators (stores, queues, blob backends) should
// return these (optionally wrapped) so services can translate them into domain
// errors exactly once.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
