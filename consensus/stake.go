package consensus

import (
	"crypto/cipher"
	"errors"
	"math/big"

	"go.dedis.ch/kyber/v4/util/random"
)

// ErrNoStake is returned when no validator holds stake.
var ErrNoStake = errors.New("no stake")

// SelectValidator picks a validator with probability proportional to its
// stake. It draws pick in [1, total] from stream and returns the first
// validator whose cumulative stake reaches pick. A nil stream uses
// crypto/rand through kyber.
func SelectValidator(validators []Validator, stream cipher.Stream) (Validator, error) {
	total := new(big.Int)
	for _, v := range validators {
		total.Add(total, new(big.Int).SetUint64(v.Stake))
	}
	if total.Sign() == 0 {
		return Validator{}, ErrNoStake
	}
	if stream == nil {
		stream = random.New()
	}

	// random.Int draws from [1, mod-1]
	pick := random.Int(new(big.Int).Add(total, big.NewInt(1)), stream)

	cumulative := new(big.Int)
	for _, v := range validators {
		cumulative.Add(cumulative, new(big.Int).SetUint64(v.Stake))
		if cumulative.Cmp(pick) >= 0 {
			return v, nil
		}
	}
	// unreachable: pick never exceeds total
	return validators[len(validators)-1], nil
}

// computeQuorum returns the number of votes needed to commit a block among
// n validators, ceiling((2n+2)/3).
func computeQuorum(n int) int { return (2*n + 2) / 3 }
