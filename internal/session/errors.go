package session

import "github.com/olegrjumin/threatlens/internal/checker"

// Error is a session lifecycle error carrying an API error code
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// ErrorCode returns the code reported to hosts
func (e *Error) ErrorCode() string { return e.code }

var (
	// ErrMissingTarget is returned when an event carries no target key
	ErrMissingTarget = &Error{code: checker.ErrorMissingTarget, msg: "target key is required"}

	// ErrUnknownTarget is returned for events about a target with no active evaluation
	ErrUnknownTarget = &Error{code: checker.ErrorUnknownTarget, msg: "no evaluation for target"}

	// ErrStaleGeneration is returned for events addressed to a superseded navigation
	ErrStaleGeneration = &Error{code: checker.ErrorStaleGeneration, msg: "evaluation was superseded by a newer navigation"}
)
