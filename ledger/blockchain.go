package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/luca-patrignani/merkle-ledger/hashing"
)

// GenesisPrevHash is the previous hash recorded by the first block.
const GenesisPrevHash hashing.Digest = "0"

// GenesisTransaction is the marker batch of the default genesis block.
const GenesisTransaction Transaction = "Genesis Block"

var (
	// ErrIndexOutOfRange is returned when a block position does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrEmptyChain is returned by a Blockchain that has no genesis block.
	ErrEmptyChain = errors.New("blockchain is empty")
	// ErrTailMoved is returned by AppendAfter when the tail is not the expected block.
	ErrTailMoved = errors.New("tail moved")
)

// Blockchain is an append-only sequence of blocks linked by hash.
type Blockchain struct {
	mu     sync.RWMutex // Append is exclusive, readers share
	blocks []Block
	clock  Clock
	logger *slog.Logger
}

// NewBlockchain creates a chain holding only its genesis block: index 0,
// previous hash "0" and the marker transaction "Genesis Block" unless
// WithGenesis says otherwise.
func NewBlockchain(opts ...option) (*Blockchain, error) {
	c := config{
		clock:   SystemClock{},
		logger:  slog.Default(),
		genesis: []Transaction{GenesisTransaction},
	}
	for _, opt := range opts {
		c = opt(c)
	}

	genesis, err := NewBlock(0, c.genesis, GenesisPrevHash, c.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create genesis block: %w", err)
	}
	c.logger.Debug("genesis block created", "hash", genesis.Hash.Short())

	return &Blockchain{
		blocks: []Block{genesis},
		clock:  c.clock,
		logger: c.logger,
	}, nil
}

// Append seals txs into a new block linked to the current tail and adds it
// to the chain. Reading the tail and publishing the block happen under one
// lock, so concurrent appends are serialized.
func (bc *Blockchain) Append(txs []Transaction) (Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if len(bc.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}
	return bc.appendLocked(txs)
}

// AppendAfter is Append for callers that computed something over the tail
// they read earlier. The block is added only if prev is still the hash of
// the tail, checked under the same lock that publishes the block; otherwise
// the chain is left unchanged and ErrTailMoved is returned.
func (bc *Blockchain) AppendAfter(prev hashing.Digest, txs []Transaction) (Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if len(bc.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}
	if tail := bc.blocks[len(bc.blocks)-1].Hash; tail != prev {
		return Block{}, fmt.Errorf("%w: expected %s, tail is %s", ErrTailMoved, prev.Short(), tail.Short())
	}
	return bc.appendLocked(txs)
}

// appendLocked seals txs after the current tail. bc.mu must be held for
// writing and the chain must not be empty.
func (bc *Blockchain) appendLocked(txs []Transaction) (Block, error) {
	latest := bc.blocks[len(bc.blocks)-1]
	block, err := NewBlock(len(bc.blocks), txs, latest.Hash, bc.clock)
	if err != nil {
		return Block{}, fmt.Errorf("invalid block: %w", err)
	}
	bc.blocks = append(bc.blocks, block)

	bc.log().Debug("block appended",
		"index", block.Index,
		"transactions", len(block.Transactions),
		"hash", block.Hash.Short(),
	)
	return block, nil
}

// GetLatest returns the most recently added block in the blockchain.
// Returns an error if the blockchain is empty.
func (bc *Blockchain) GetLatest() (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}

	return bc.blocks[len(bc.blocks)-1], nil
}

// GetByIndex returns the block stored at index. The pointer refers to the
// chain's current storage: writes through it are seen by Validate only until
// the next Append, which may move the blocks to new storage. Fetch the block
// again after appending.
func (bc *Blockchain) GetByIndex(index int) (*Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if index < 0 || index >= len(bc.blocks) {
		return nil, fmt.Errorf("block %d: %w", index, ErrIndexOutOfRange)
	}

	return &bc.blocks[index], nil
}

// Len returns the number of blocks, genesis included.
func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// Blocks returns a snapshot of the chain.
func (bc *Blockchain) Blocks() []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	out := make([]Block, len(bc.blocks))
	for i, b := range bc.blocks {
		b.Transactions = append([]Transaction(nil), b.Transactions...)
		out[i] = b
	}
	return out
}

// Validate walks the chain from the genesis block and stops at the first
// block that fails. For every block the hash is recomputed from the live
// transactions and compared with the stored hash; then its previous hash is
// compared with the stored hash of its predecessor (for genesis, with "0").
func (bc *Blockchain) Validate() ValidationResult {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	result := bc.validate()
	if !result.Valid {
		bc.log().Warn("chain validation failed", "index", result.Index, "reason", result.Reason.String())
	}
	return result
}

func (bc *Blockchain) validate() ValidationResult {
	if len(bc.blocks) == 0 {
		return ValidationResult{Index: 0, Reason: ReasonEmptyChain}
	}

	for i := range bc.blocks {
		current := &bc.blocks[i]

		recomputed, err := current.RecomputeHash()
		if err != nil || recomputed != current.Hash {
			return hashMismatch(i)
		}

		expectedPrev := GenesisPrevHash
		if i > 0 {
			expectedPrev = bc.blocks[i-1].Hash
		}
		if current.PrevHash != expectedPrev {
			return linkMismatch(i)
		}
	}

	return valid()
}

func (bc *Blockchain) log() *slog.Logger {
	if bc.logger == nil {
		return slog.Default()
	}
	return bc.logger
}

// Verify returns nil when the chain is intact and a *ValidationError otherwise.
func (bc *Blockchain) Verify() error {
	return bc.Validate().Err()
}
