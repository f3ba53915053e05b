package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrHashMismatch marks a block whose recomputed hash differs from its stored one.
	ErrHashMismatch = errors.New("hash mismatch")
	// ErrLinkMismatch marks a block whose previous hash does not match its predecessor.
	ErrLinkMismatch = errors.New("link mismatch")
)

// Reason says why validation stopped.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonHashMismatch
	ReasonLinkMismatch
	ReasonEmptyChain
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonHashMismatch:
		return "hash mismatch"
	case ReasonLinkMismatch:
		return "link mismatch"
	case ReasonEmptyChain:
		return "empty chain"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// ValidationResult is the verdict of a chain scan. When Valid is false,
// Index is the first block that failed and Reason names the failed check;
// blocks after Index were not examined.
type ValidationResult struct {
	Valid  bool
	Index  int
	Reason Reason
}

func valid() ValidationResult {
	return ValidationResult{Valid: true, Index: -1, Reason: ReasonNone}
}

func hashMismatch(i int) ValidationResult {
	return ValidationResult{Index: i, Reason: ReasonHashMismatch}
}

func linkMismatch(i int) ValidationResult {
	return ValidationResult{Index: i, Reason: ReasonLinkMismatch}
}

// Err returns nil for a valid chain and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Index: r.Index, Reason: r.Reason}
}

// ValidationError reports a compromised chain. It matches ErrHashMismatch or
// ErrLinkMismatch with errors.Is.
type ValidationError struct {
	Index  int
	Reason Reason
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonEmptyChain {
		return "empty blockchain"
	}
	return fmt.Sprintf("block %d invalid: %s", e.Index, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	switch e.Reason {
	case ReasonHashMismatch:
		return target == ErrHashMismatch
	case ReasonLinkMismatch:
		return target == ErrLinkMismatch
	case ReasonEmptyChain:
		return target == ErrEmptyChain
	}
	return false
}
