package consensus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/luca-patrignani/merkle-ledger/hashing"
)

// DefaultMaxAttempts bounds a nonce search when MineOptions leaves it unset.
const DefaultMaxAttempts = 10_000_000

// ctxCheckInterval is how many attempts run between context checks.
const ctxCheckInterval = 4096

var (
	// ErrNonceNotFound is returned when the attempt budget runs out.
	ErrNonceNotFound = errors.New("nonce not found")
	// ErrInvalidDifficulty is returned for a difficulty outside [0, hashing.Size].
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// MineOptions bounds a nonce search. A zero MaxAttempts means
// DefaultMaxAttempts and a zero Timeout means no deadline.
type MineOptions struct {
	MaxAttempts uint64
	Timeout     time.Duration
}

// DefaultMineOptions returns the options used when none are given.
func DefaultMineOptions() MineOptions {
	return MineOptions{MaxAttempts: DefaultMaxAttempts}
}

// Mine searches for the smallest nonce whose digest of prevHash followed by
// the decimal nonce starts with difficulty hex zeros.
func Mine(ctx context.Context, prevHash hashing.Digest, difficulty int, opts MineOptions) (Work, error) {
	if err := checkDifficulty(difficulty); err != nil {
		return Work{}, err
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	prefix := strings.Repeat("0", difficulty)
	start := time.Now()
	for nonce := uint64(0); nonce < opts.MaxAttempts; nonce++ {
		if nonce%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Work{}, fmt.Errorf("mining stopped after %d attempts: %w", nonce, err)
			}
		}
		h := workHash(prevHash, nonce)
		if strings.HasPrefix(string(h), prefix) {
			return Work{
				Nonce:    nonce,
				Hash:     h,
				Attempts: nonce + 1,
				Elapsed:  time.Since(start),
			}, nil
		}
	}
	return Work{}, fmt.Errorf("%w within %d attempts", ErrNonceNotFound, opts.MaxAttempts)
}

// CheckWork reports whether nonce satisfies difficulty over prevHash.
func CheckWork(prevHash hashing.Digest, nonce uint64, difficulty int) bool {
	if checkDifficulty(difficulty) != nil {
		return false
	}
	return strings.HasPrefix(string(workHash(prevHash, nonce)), strings.Repeat("0", difficulty))
}

func workHash(prevHash hashing.Digest, nonce uint64) hashing.Digest {
	return hashing.SumString(string(prevHash) + strconv.FormatUint(nonce, 10))
}

func checkDifficulty(difficulty int) error {
	if difficulty < 0 || difficulty > hashing.Size {
		return fmt.Errorf("%w: %d", ErrInvalidDifficulty, difficulty)
	}
	return nil
}
