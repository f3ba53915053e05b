package consensus

import (
	"github.com/luca-patrignani/merkle-ledger/hashing"
	"github.com/luca-patrignani/merkle-ledger/ledger"
)

// Ledger is the part of the chain a Producer needs.
// *ledger.Blockchain implements it.
type Ledger interface {
	// Append seals a batch into a new block linked to the current tail.
	Append(txs []ledger.Transaction) (ledger.Block, error)

	// AppendAfter appends like Append, but only while prev is still the hash
	// of the tail. Otherwise it returns ledger.ErrTailMoved and appends nothing.
	AppendAfter(prev hashing.Digest, txs []ledger.Transaction) (ledger.Block, error)

	// GetLatest returns the current tail.
	GetLatest() (ledger.Block, error)

	// Verify checks the integrity of the entire chain.
	Verify() error
}

// Scheme signs and verifies byte payloads.
type Scheme interface {
	// Name identifies the scheme inside signed envelopes.
	Name() string

	// GenerateKey returns a fresh key pair in the scheme's binary encoding.
	GenerateKey() (KeyPair, error)

	// Sign returns the signature of payload under the private key.
	Sign(private, payload []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of payload under public.
	Verify(public, payload, sig []byte) bool
}

var _ Ledger = (*ledger.Blockchain)(nil)
