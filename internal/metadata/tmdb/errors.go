package tmdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for TMDB API operations.
var (
	ErrNotFound         = errors.New("tmdb: not found")
	ErrUnauthorized     = errors.New("tmdb: invalid api key")
	ErrRateLimited      = errors.New("tmdb: rate limited by server")
	ErrServer           = errors.New("tmdb: server error")
	ErrUnexpectedStatus = errors.New("tmdb: unexpected status")
	ErrDecode           = errors.New("tmdb: malformed response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // Operation: "getMovie"
	MovieID int
	Status  int // HTTP status when a response was received, otherwise 0
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tmdb %s [%d] status %d: %v", e.Op, e.MovieID, e.Status, e.Err)
	}
	return fmt.Sprintf("tmdb %s [%d]: %v", e.Op, e.MovieID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func wrapError(op string, movieID, status int, err error) error {
	return &Error{
		Op:      op,
		MovieID: movieID,
		Status:  status,
		Err:     err,
	}
}
