// Package errors provides the typed failure taxonomy shared by the board
// engine, the match aggregate and the match service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input and rule errors
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeInvalidMove      Code = "INVALID_MOVE"
	CodeInvalidState     Code = "INVALID_STATE"
	CodeUnknownMatchType Code = "UNKNOWN_MATCH_TYPE"

	// Service precondition errors
	CodeMatchNotFound          Code = "MATCH_NOT_FOUND"
	CodeUserNotInThisMatch     Code = "USER_NOT_IN_THIS_MATCH"
	CodeUserAlreadyInMatch     Code = "USER_ALREADY_IN_MATCH"
	CodeMatchNotInWaitingState Code = "MATCH_NOT_IN_WAITING_STATE"
	CodeVersionMismatch        Code = "VERSION_MISMATCH"
	CodeIncorrectPlayerType    Code = "INCORRECT_PLAYER_TYPE"

	// Storage errors
	CodeDuplicateMatchID Code = "DUPLICATE_MATCH_ID"
	CodeInternal         Code = "INTERNAL"
)

// Reasons attached to CodeInvalidMove under the "reason" metadata key.
const (
	ReasonNotYourTurn = "not_your_turn"
	ReasonOccupied    = "occupied"
	ReasonWrongType   = "wrong_type"
	ReasonNoCapture   = "no_capture"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, illegal moves
	case CodeInvalidArgument,
		CodeInvalidMove,
		CodeUnknownMatchType:
		return http.StatusBadRequest

	// Forbidden - caller is not allowed to act in this match
	case CodeUserNotInThisMatch,
		CodeIncorrectPlayerType:
		return http.StatusForbidden

	// NotFound - resource doesn't exist
	case CodeMatchNotFound:
		return http.StatusNotFound

	// Conflict - state doesn't allow operation
	case CodeInvalidState,
		CodeUserAlreadyInMatch,
		CodeMatchNotInWaitingState,
		CodeVersionMismatch,
		CodeDuplicateMatchID:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
