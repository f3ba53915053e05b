package consensus

import (
	"time"

	"github.com/luca-patrignani/merkle-ledger/hashing"
	"github.com/luca-patrignani/merkle-ledger/ledger"
)

// KeyPair holds binary encoded keys of a Scheme.
type KeyPair struct {
	Public  []byte `json:"public"`
	Private []byte `json:"-"`
}

// Validator is a participant eligible to produce blocks.
type Validator struct {
	Name  string  `json:"name"`
	Stake uint64  `json:"stake"`
	Keys  KeyPair `json:"keys"`
}

// SignedTransaction is the envelope SignTransaction stores in a ledger
// transaction.
type SignedTransaction struct {
	Scheme    string `json:"scheme"`
	Payload   []byte `json:"payload"`
	Public    []byte `json:"public"`
	Signature []byte `json:"sig,omitempty"`
}

// Work is a solved proof-of-work.
type Work struct {
	Nonce    uint64         `json:"nonce"`
	Hash     hashing.Digest `json:"hash"`
	Attempts uint64         `json:"attempts"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// Receipt records how a block was produced.
type Receipt struct {
	Block      ledger.Block `json:"block"`
	Leader     string       `json:"leader"`
	Difficulty int          `json:"difficulty"`
	Work       Work         `json:"work"`
	Votes      []Vote       `json:"votes"`
}

// Vote is a validator's endorsement of a block hash.
type Vote struct {
	Voter     string         `json:"voter"`
	BlockHash hashing.Digest `json:"block_hash"`
	Signature []byte         `json:"sig,omitempty"`
}
