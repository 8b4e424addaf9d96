package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common failures of the proof-of-work and relay components.
var (
	ErrDifficultyOutOfRange = errors.New("difficulty exceeds digest length")
	ErrInvalidCommitment    = errors.New("commitment is malformed")
	ErrSolverQueueFull      = errors.New("solver queue is full")
	ErrSolverClosed         = errors.New("solver pool is shut down")
)

// Gate rejection reasons. The relay drops the frame and keeps the
// connection open.
var (
	ErrInsufficientDifficulty = errors.New("commitment difficulty below required minimum")
	ErrProofInvalid           = errors.New("commitment proof does not verify")
)
