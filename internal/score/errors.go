package score

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes scoreboard errors.
type ErrorCode string

const (
	// CodeInvalidToken indicates malformed rank text.
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// CodeRankCollision indicates two or more players share a rank in one round.
	CodeRankCollision ErrorCode = "RANK_COLLISION"

	// CodeNotRegistered indicates the roster is incomplete or has duplicates.
	CodeNotRegistered ErrorCode = "NOT_REGISTERED"

	// CodeSessionComplete indicates the round limit has been reached.
	CodeSessionComplete ErrorCode = "SESSION_COMPLETE"

	// CodeEmptyHistory indicates an undo with nothing to undo.
	CodeEmptyHistory ErrorCode = "EMPTY_HISTORY"

	// CodeDuplicateName indicates a rename that would repeat a name.
	CodeDuplicateName ErrorCode = "DUPLICATE_NAME"

	// CodeConfigError indicates bad settings or a point table missing an entry.
	CodeConfigError ErrorCode = "CONFIG_ERROR"

	// CodeCorruptState indicates persisted state that could not be read.
	// It is reported as a notice; callers recover with defaults.
	CodeCorruptState ErrorCode = "CORRUPT_STATE"
)

// Error is a scoreboard error with enough context to tell the operator
// which slot or player caused it.
//
// Every Error is recoverable: the operation that returned it left the
// ledger untouched.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Slot is the 1-based roster slot, 0 when the error is not tied to one.
	Slot int

	// Player is the player in Slot, if known.
	Player string

	// Token is the raw token that failed to parse.
	Token string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var ctx []string
	if e.Slot > 0 {
		ctx = append(ctx, fmt.Sprintf("slot=%d", e.Slot))
	}
	if e.Player != "" {
		ctx = append(ctx, fmt.Sprintf("player=%s", e.Player))
	}
	if e.Code == CodeInvalidToken && (e.Token != "" || e.Slot > 0) {
		ctx = append(ctx, fmt.Sprintf("token=%q", e.Token))
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(ctx, ", "))
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidToken creates an INVALID_TOKEN error for the given raw token.
func NewInvalidToken(token, message string) *Error {
	return &Error{Code: CodeInvalidToken, Message: message, Token: token}
}

// RankGroup lists every player that claimed Rank in one round.
type RankGroup struct {
	Rank    int      `json:"rank"`
	Players []string `json:"players"`
}

// RankCollisionError reports every rank claimed by more than one player,
// one group per rank, ordered by rank.
type RankCollisionError struct {
	Groups []RankGroup
}

// Error implements the error interface.
func (e *RankCollisionError) Error() string {
	parts := make([]string, len(e.Groups))
	for i, g := range e.Groups {
		parts[i] = fmt.Sprintf("rank %d: %s", g.Rank, strings.Join(g.Players, ", "))
	}
	return fmt.Sprintf("%s: ranks overlap (%s)", CodeRankCollision, strings.Join(parts, "; "))
}

// CodeOf extracts the error code from err.
// Returns the empty code if err is not a scoreboard error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var rc *RankCollisionError
	if errors.As(err, &rc) {
		return CodeRankCollision
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsRankCollision returns true if err is a rank collision.
func IsRankCollision(err error) bool {
	var rc *RankCollisionError
	return errors.As(err, &rc)
}

// IsInvalidToken returns true if err is a token parse error.
func IsInvalidToken(err error) bool {
	return IsCode(err, CodeInvalidToken)
}
