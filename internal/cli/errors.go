package cli

import (
	"errors"

	"github.com/roach88/racetally/internal/score"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeStore    = "E002" // Database open/load/save failed
	ErrCodeConfig   = "E003" // Config file unreadable or invalid
	ErrCodeUsage    = "E004" // Bad flags or arguments
	ErrCodeNotFound = "E005" // Path not found

	// Scoreboard errors
	ErrCodeInvalidToken    = "E201"
	ErrCodeRankCollision   = "E202"
	ErrCodeNotRegistered   = "E203"
	ErrCodeSessionComplete = "E204"
	ErrCodeEmptyHistory    = "E205"
	ErrCodeDuplicateName   = "E206"
	ErrCodeConfigError     = "E207"
	ErrCodeCorruptState    = "E208"
)

var scoreCodes = map[score.ErrorCode]string{
	score.CodeInvalidToken:    ErrCodeInvalidToken,
	score.CodeRankCollision:   ErrCodeRankCollision,
	score.CodeNotRegistered:   ErrCodeNotRegistered,
	score.CodeSessionComplete: ErrCodeSessionComplete,
	score.CodeEmptyHistory:    ErrCodeEmptyHistory,
	score.CodeDuplicateName:   ErrCodeDuplicateName,
	score.CodeConfigError:     ErrCodeConfigError,
	score.CodeCorruptState:    ErrCodeCorruptState,
}

// MapScoreErrorToCode maps a scoreboard error to its CLI error code.
// Returns ErrCodeGeneric for errors that carry no scoreboard code.
func MapScoreErrorToCode(err error) string {
	if code, ok := scoreCodes[score.CodeOf(err)]; ok {
		return code
	}
	return ErrCodeGeneric
}

// errorDetails extracts structured context from scoreboard errors.
func errorDetails(err error) interface{} {
	var rc *score.RankCollisionError
	if errors.As(err, &rc) {
		return map[string]interface{}{"groups": rc.Groups}
	}
	var se *score.Error
	if errors.As(err, &se) && (se.Slot > 0 || se.Player != "" || se.Token != "") {
		details := map[string]interface{}{}
		if se.Slot > 0 {
			details["slot"] = se.Slot
		}
		if se.Player != "" {
			details["player"] = se.Player
		}
		if se.Token != "" {
			details["token"] = se.Token
		}
		return details
	}
	return nil
}

// reportError writes err through formatter and returns the matching
// ExitError. Scoreboard errors are user input problems (exit 1); anything
// else is a command error (exit 2) reported under fallback.
func reportError(formatter *OutputFormatter, fallback string, err error) error {
	if score.CodeOf(err) != "" {
		code := MapScoreErrorToCode(err)
		_ = formatter.Error(code, err.Error(), errorDetails(err))
		return WrapExitError(ExitFailure, code, err)
	}
	_ = formatter.Error(fallback, err.Error(), nil)
	return WrapExitError(ExitCommandError, fallback, err)
}
