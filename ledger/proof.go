package ledger

import (
	"fmt"

	"github.com/luca-patrignani/merkle-ledger/hashing"
	"github.com/luca-patrignani/merkle-ledger/merkle"
)

// TransactionProof shows that a transaction is committed by a block's Merkle root.
type TransactionProof struct {
	BlockIndex  int            `json:"block_index"`
	TxIndex     int            `json:"tx_index"`
	Transaction Transaction    `json:"transaction"`
	MerkleRoot  hashing.Digest `json:"merkle_root"`
	Proof       merkle.Proof   `json:"proof"`
}

// ProveTransaction builds the inclusion proof of transaction txIndex of block
// blockIndex against the block's stored Merkle root.
func (bc *Blockchain) ProveTransaction(blockIndex, txIndex int) (TransactionProof, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if blockIndex < 0 || blockIndex >= len(bc.blocks) {
		return TransactionProof{}, fmt.Errorf("block %d: %w", blockIndex, ErrIndexOutOfRange)
	}
	block := &bc.blocks[blockIndex]

	tree, err := block.Tree()
	if err != nil {
		return TransactionProof{}, fmt.Errorf("block %d: %w", blockIndex, err)
	}
	proof, err := tree.Prove(txIndex)
	if err != nil {
		return TransactionProof{}, fmt.Errorf("block %d: %w", blockIndex, err)
	}

	return TransactionProof{
		BlockIndex:  blockIndex,
		TxIndex:     txIndex,
		Transaction: block.Transactions[txIndex],
		MerkleRoot:  block.MerkleRoot,
		Proof:       proof,
	}, nil
}

// VerifyTransaction checks p against the root it carries. It does not consult
// the chain.
func VerifyTransaction(p TransactionProof) bool {
	return merkle.Verify(p.Transaction, p.Proof, p.MerkleRoot)
}
