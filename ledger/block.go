package ledger

import (
	"fmt"

	"github.com/luca-patrignani/merkle-ledger/hashing"
	"github.com/luca-patrignani/merkle-ledger/merkle"
)

// Transaction is an opaque payload committed by a block.
type Transaction string

// Bytes returns the payload bytes.
func (tx Transaction) Bytes() []byte {
	return []byte(tx)
}

// Block binds a header to the batch of transactions it commits to.
type Block struct {
	Index        int            `json:"index"`
	Timestamp    int64          `json:"timestamp"`
	Transactions []Transaction  `json:"transactions"`
	MerkleRoot   hashing.Digest `json:"merkle_root"`
	PrevHash     hashing.Digest `json:"prev_hash"`
	Hash         hashing.Digest `json:"hash"`
}

// NewBlock builds the Merkle tree over txs, stamps the block with the clock
// and seals it with its header hash. The transactions are copied.
func NewBlock(index int, txs []Transaction, prevHash hashing.Digest, clock Clock) (Block, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	b := Block{
		Index:        index,
		Timestamp:    clock.Now().UnixNano(),
		Transactions: append([]Transaction(nil), txs...),
		PrevHash:     prevHash,
	}
	tree, err := b.Tree()
	if err != nil {
		return Block{}, fmt.Errorf("failed to build merkle tree for block %d: %w", index, err)
	}
	b.MerkleRoot = tree.Root()
	b.Hash = headerHash(b.Index, b.Timestamp, b.MerkleRoot, b.PrevHash)
	return b, nil
}

// Tree builds the Merkle tree over the block's current transactions.
func (b *Block) Tree() (*merkle.Tree, error) {
	return merkle.Build(b.Transactions)
}

// RecomputeHash derives the Merkle root again from the live transactions,
// ignoring the stored MerkleRoot, and hashes it with the other header fields.
// A block whose transactions were altered after sealing gets a hash that
// differs from Hash.
func (b *Block) RecomputeHash() (hashing.Digest, error) {
	tree, err := b.Tree()
	if err != nil {
		return "", err
	}
	return headerHash(b.Index, b.Timestamp, tree.Root(), b.PrevHash), nil
}

// ReplaceTransactions swaps the committed batch without resealing the block.
// It exists to simulate tampering; the ledger itself never calls it.
func (b *Block) ReplaceTransactions(txs []Transaction) {
	b.Transactions = append([]Transaction(nil), txs...)
}

// headerHash is the SHA-256 of "index:timestamp:merkleRoot:prevHash".
func headerHash(index int, timestamp int64, merkleRoot, prevHash hashing.Digest) hashing.Digest {
	data := fmt.Sprintf("%d:%d:%s:%s", index, timestamp, merkleRoot, prevHash)
	return hashing.SumString(data)
}
