package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Domain errors reported back to the caller
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrRateLimited       ErrorCode = "RATE_LIMITED"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrInvalidPhase      ErrorCode = "INVALID_PHASE"
	ErrAlreadyVoted      ErrorCode = "ALREADY_VOTED"

	// Request errors
	ErrInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	ErrInvalidCommand   ErrorCode = "INVALID_COMMAND"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"

	// System errors
	ErrDuplicateOpenBattle ErrorCode = "DUPLICATE_OPEN_BATTLE"
	ErrAdapterFailure      ErrorCode = "ADAPTER_FAILURE"
	ErrInternalError       ErrorCode = "INTERNAL_ERROR"
)

// userMessages holds the stable, user-facing text for each code
var userMessages = map[ErrorCode]string{
	ErrInsufficientFunds:   "You don't have enough coins for this pool.",
	ErrRateLimited:         "You already entered this pool in the last 24 hours.",
	ErrNotFound:            "Nothing found for that battle, entrant or user.",
	ErrInvalidPhase:        "That can't be done while the battle is in its current phase.",
	ErrAlreadyVoted:        "You already voted in this battle. Remove your vote first.",
	ErrInvalidArgument:     "Some of the options you gave are invalid.",
	ErrInvalidCommand:      "Unknown command.",
	ErrPermissionDenied:    "Only administrators can do that.",
	ErrDuplicateOpenBattle: "Something went wrong with this pool. An administrator has been notified.",
	ErrAdapterFailure:      "We couldn't reach an external service. Please try again shortly.",
	ErrInternalError:       "Something went wrong. Please try again.",
}

// BattleError represents a battle-related error
type BattleError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *BattleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *BattleError) Unwrap() error {
	return e.Err
}

// NewBattleError creates a new BattleError
func NewBattleError(code ErrorCode, message string) *BattleError {
	return &BattleError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error in a BattleError
func WrapError(code ErrorCode, message string, err error) *BattleError {
	return &BattleError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsBattleError checks if an error is a BattleError and has a specific code
func IsBattleError(err error, code ErrorCode) bool {
	var battleErr *BattleError
	if err == nil {
		return false
	}
	if ok := As(err, &battleErr); !ok {
		return false
	}
	return battleErr.Code == code
}

// As finds the first BattleError in err's chain
func As(err error, target **BattleError) bool {
	if target == nil || err == nil {
		return false
	}
	return errors.As(err, target)
}

// CodeOf returns the error's code, or ErrInternalError for foreign errors
func CodeOf(err error) ErrorCode {
	var battleErr *BattleError
	if As(err, &battleErr) {
		return battleErr.Code
	}
	return ErrInternalError
}

// UserMessage returns the stable message shown to users for err
func UserMessage(err error) string {
	var battleErr *BattleError
	if !As(err, &battleErr) {
		return userMessages[ErrInternalError]
	}
	switch battleErr.Code {
	case ErrDuplicateOpenBattle, ErrAdapterFailure, ErrInternalError:
		return userMessages[battleErr.Code]
	}
	if msg, ok := userMessages[battleErr.Code]; ok {
		if battleErr.Message != "" {
			return msg + " " + battleErr.Message
		}
		return msg
	}
	return battleErr.Message
}
