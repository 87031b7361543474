// Package errors provides coded domain errors that transport collaborators can
// map onto gRPC status values.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Construction errors
	CodeLegionRequired   Code = "LEGION_REQUIRED"
	CodeDonorRequired    Code = "DONOR_REQUIRED"
	CodeDonorIsTarget    Code = "DONOR_IS_TARGET"
	CodeCreatureRequired Code = "CREATURE_REQUIRED"
	CodeHexRequired      Code = "HEX_REQUIRED"
	CodeTurnNegative     Code = "TURN_NEGATIVE"

	// Rules application errors
	CodeLegionNotFound  Code = "LEGION_NOT_FOUND"
	CodePlayerNotFound  Code = "PLAYER_NOT_FOUND"
	CodeCreatureMissing Code = "CREATURE_MISSING"
	CodeUndoMismatch    Code = "UNDO_MISMATCH"

	// History errors
	CodeHistoryCorrupt Code = "HISTORY_CORRUPT"
	CodeTurnRegression Code = "TURN_REGRESSION"
	CodeSequenceGap    Code = "SEQUENCE_GAP"
	CodeChainBroken    Code = "CHAIN_BROKEN"

	// Storage errors
	CodeRosterNotFound Code = "ROSTER_NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeLegionRequired,
		CodeDonorRequired,
		CodeDonorIsTarget,
		CodeCreatureRequired,
		CodeHexRequired,
		CodeTurnNegative:
		return codes.InvalidArgument

	case CodeCreatureMissing,
		CodeUndoMismatch:
		return codes.FailedPrecondition

	// A desynchronized or tampered history cannot be retried into health.
	case CodeHistoryCorrupt,
		CodeTurnRegression,
		CodeSequenceGap,
		CodeChainBroken:
		return codes.DataLoss

	case CodeRosterNotFound,
		CodeLegionNotFound,
		CodePlayerNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
