package engine

import (
	"errors"

	apperrors "github.com/cleka/colossus-titan-sub015/internal/platform/errors"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
)

// nonRetryableError wraps an error to signal that retrying the commit would
// be harmful: the event already reached the journal but the in-memory state
// or history could not follow.
type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string { return e.err.Error() }
func (e *nonRetryableError) Unwrap() error { return e.err }

// NonRetryable returns true from IsNonRetryable checks.
func (e *nonRetryableError) NonRetryable() bool { return true }

func wrapNonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &nonRetryableError{err: err}
}

// IsNonRetryable returns true when the error (or any error in its chain)
// signals that the commit must not be retried.
func IsNonRetryable(err error) bool {
	var target interface{ NonRetryable() bool }
	if errors.As(err, &target) {
		return target.NonRetryable()
	}
	return false
}

var codeTable = []struct {
	sentinel error
	code     apperrors.Code
}{
	{action.ErrLegionRequired, apperrors.CodeLegionRequired},
	{event.ErrLegionRequired, apperrors.CodeLegionRequired},
	{action.ErrDonorRequired, apperrors.CodeDonorRequired},
	{event.ErrDonorRequired, apperrors.CodeDonorRequired},
	{action.ErrDonorIsTarget, apperrors.CodeDonorIsTarget},
	{action.ErrCreatureRequired, apperrors.CodeCreatureRequired},
	{action.ErrRecruiterRequired, apperrors.CodeCreatureRequired},
	{event.ErrCreatureRequired, apperrors.CodeCreatureRequired},
	{event.ErrRecruiterRequired, apperrors.CodeCreatureRequired},
	{action.ErrHexRequired, apperrors.CodeHexRequired},
	{event.ErrHexRequired, apperrors.CodeHexRequired},
	{event.ErrTurnNegative, apperrors.CodeTurnNegative},
	{game.ErrLegionNotFound, apperrors.CodeLegionNotFound},
	{game.ErrPlayerNotFound, apperrors.CodePlayerNotFound},
	{game.ErrCreatureMissing, apperrors.CodeCreatureMissing},
	{game.ErrUndoMismatch, apperrors.CodeUndoMismatch},
	{history.ErrTurnRegression, apperrors.CodeTurnRegression},
	{history.ErrSeqConflict, apperrors.CodeSequenceGap},
	{event.ErrCorrupt, apperrors.CodeHistoryCorrupt},
}

// Code classifies a domain error for transport collaborators.
func Code(err error) apperrors.Code {
	if code := apperrors.CodeOf(err); code != apperrors.CodeUnknown {
		return code
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.sentinel) {
			return entry.code
		}
	}
	return apperrors.CodeUnknown
}

// coded wraps err with its domain code. Errors that already carry a code
// are returned as they are.
func coded(message string, metadata map[string]string, err error) error {
	if err == nil {
		return nil
	}
	var existing *apperrors.Error
	if errors.As(err, &existing) {
		return err
	}
	return apperrors.WrapWithMetadata(Code(err), message, metadata, err)
}
