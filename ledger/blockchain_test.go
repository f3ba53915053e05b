package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/luca-patrignani/merkle-ledger/hashing"
	"github.com/luca-patrignani/merkle-ledger/merkle"
)

// steppingClock returns a clock that starts at the Unix epoch and advances by
// one second on every call, so block hashes are reproducible.
func steppingClock() Clock {
	var mu sync.Mutex
	next := time.Unix(0, 0)
	return ClockFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestChain creates a blockchain with a deterministic clock and appends one
// block per batch.
func newTestChain(t *testing.T, batches ...[]Transaction) *Blockchain {
	t.Helper()
	bc, err := NewBlockchain(WithClock(steppingClock()), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("failed to create blockchain: %v", err)
	}
	for i, txs := range batches {
		if _, err := bc.Append(txs); err != nil {
			t.Fatalf("unexpected error appending block %d: %v", i+1, err)
		}
	}
	return bc
}

func expectResult(t *testing.T, got ValidationResult, index int, reason Reason) {
	t.Helper()
	if got.Valid {
		t.Fatalf("expected %s at block %d, chain reported valid", reason, index)
	}
	if got.Index != index || got.Reason != reason {
		t.Fatalf("expected %s at block %d, got %s at block %d", reason, index, got.Reason, got.Index)
	}
}

var (
	aliceBob    = []Transaction{"Alice pays Bob 10 BTC", "Bob pays Charlie 5 BTC"}
	charlieDave = []Transaction{"Charlie pays Dave 2 BTC", "Dave pays Eve 1 BTC", "Eve pays Alice 1 BTC"}
)

// TestNewBlockchainGenesis verifies that a new blockchain holds exactly the
// genesis block with the "0" previous hash and the marker transaction.
func TestNewBlockchainGenesis(t *testing.T) {
	bc := newTestChain(t)

	if len(bc.blocks) != 1 {
		t.Fatalf("expected 1 block (genesis), got %d", len(bc.blocks))
	}
	genesis := bc.blocks[0]
	if genesis.Index != 0 {
		t.Fatalf("genesis index should be 0, got %d", genesis.Index)
	}
	if genesis.PrevHash != "0" {
		t.Fatalf("genesis PrevHash should be '0', got %s", genesis.PrevHash)
	}
	if len(genesis.Transactions) != 1 || genesis.Transactions[0] != "Genesis Block" {
		t.Fatalf("genesis should carry the marker transaction, got %v", genesis.Transactions)
	}
	if genesis.MerkleRoot != hashing.SumString("Genesis Block") {
		t.Fatalf("single transaction root should be the leaf digest, got %s", genesis.MerkleRoot)
	}
	// sha256("0:0:<root>:0")
	want := hashing.Digest("a4793c9fe059d52a620b44014a02b04ad1bdcb228622702fe2be0f5b2edef1f5")
	if genesis.Hash != want {
		t.Fatalf("genesis hash should be %s, got %s", want, genesis.Hash)
	}
}

// TestNewBlockchainWithGenesis verifies that the genesis batch can be replaced
// and that an empty one is refused.
func TestNewBlockchainWithGenesis(t *testing.T) {
	bc, err := NewBlockchain(WithGenesis("network launch", "initial allocation"), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("failed to create blockchain: %v", err)
	}
	if got := len(bc.blocks[0].Transactions); got != 2 {
		t.Fatalf("expected 2 genesis transactions, got %d", got)
	}

	_, err = NewBlockchain(WithGenesis(), WithLogger(quietLogger()))
	if !errors.Is(err, merkle.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch for an empty genesis, got %v", err)
	}
}

// TestAppendValidBlock verifies that an appended block takes the next index,
// links to the tail hash and commits to its batch.
func TestAppendValidBlock(t *testing.T) {
	bc := newTestChain(t)

	block, err := bc.Append(aliceBob)
	if err != nil {
		t.Fatalf("unexpected error appending valid block: %v", err)
	}
	if len(bc.blocks) != 2 {
		t.Fatalf("expected 2 blocks after append, got %d", len(bc.blocks))
	}
	if block.Index != 1 {
		t.Fatalf("new block index should be 1, got %d", block.Index)
	}
	if block.PrevHash != bc.blocks[0].Hash {
		t.Fatal("new block's PrevHash should match previous block's hash")
	}
	tree, err := merkle.Build(aliceBob)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	if block.MerkleRoot != tree.Root() {
		t.Fatalf("block root %s does not commit to its batch (%s)", block.MerkleRoot, tree.Root())
	}
}

// TestAppendEmptyBatch verifies that an empty batch is refused and leaves the
// chain untouched.
func TestAppendEmptyBatch(t *testing.T) {
	bc := newTestChain(t)

	_, err := bc.Append(nil)
	if !errors.Is(err, merkle.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if bc.Len() != 1 {
		t.Fatalf("blockchain should still have 1 block, got %d", bc.Len())
	}
}

// TestAppendCopiesTransactions verifies that the caller cannot alter a sealed
// batch through the slice it passed in.
func TestAppendCopiesTransactions(t *testing.T) {
	bc := newTestChain(t)
	txs := []Transaction{"Alice pays Bob 10 BTC"}
	if _, err := bc.Append(txs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txs[0] = "Alice pays Bob 1000 BTC"

	if result := bc.Validate(); !result.Valid {
		t.Fatalf("chain should stay valid, got %s at block %d", result.Reason, result.Index)
	}
}

// TestAppendMultipleBlocks verifies that sequential appends keep the chain valid.
func TestAppendMultipleBlocks(t *testing.T) {
	bc := newTestChain(t)

	for i := 0; i < 5; i++ {
		txs := []Transaction{Transaction(fmt.Sprintf("tx %d", i))}
		if _, err := bc.Append(txs); err != nil {
			t.Fatalf("unexpected error at block %d: %v", i, err)
		}
	}

	if len(bc.blocks) != 6 { // 1 genesis + 5 appended
		t.Fatalf("expected 6 blocks, got %d", len(bc.blocks))
	}
	if err := bc.Verify(); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
}

// TestTimestampIsCommitted verifies that two blocks identical except for the
// timestamp have different hashes.
func TestTimestampIsCommitted(t *testing.T) {
	at := func(sec int64) Clock {
		return ClockFunc(func() time.Time { return time.Unix(sec, 0) })
	}
	a, err := NewBlock(1, aliceBob, "prev", at(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewBlock(1, aliceBob, "prev", at(101))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.MerkleRoot != b.MerkleRoot {
		t.Fatal("same batch should give the same merkle root")
	}
	if a.Hash == b.Hash {
		t.Fatal("different timestamps should give different hashes")
	}
}

// TestRecomputeHashMatchesFreshBlock verifies that an untouched block
// recomputes to its stored hash.
func TestRecomputeHashMatchesFreshBlock(t *testing.T) {
	block, err := NewBlock(3, charlieDave, hashing.SumString("previous"), steppingClock())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := block.RecomputeHash()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != block.Hash {
		t.Fatalf("recomputed hash %s differs from stored %s", got, block.Hash)
	}
}

// TestRecomputeHashIgnoresCachedRoot verifies that replacing the batch changes
// the recomputed hash even though the stored MerkleRoot is left alone.
func TestRecomputeHashIgnoresCachedRoot(t *testing.T) {
	block, err := NewBlock(1, aliceBob, hashing.SumString("previous"), steppingClock())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := block.MerkleRoot

	block.ReplaceTransactions([]Transaction{"Alice pays Bob 100 BTC", "Bob pays Charlie 5 BTC"})

	if block.MerkleRoot != root {
		t.Fatal("ReplaceTransactions should not touch the stored root")
	}
	got, err := block.RecomputeHash()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == block.Hash {
		t.Fatal("recomputed hash should expose the replaced transactions")
	}
}

// TestValidateDetectsTamperedTransaction mutates a committed transaction in
// place and expects a hash mismatch at that block.
func TestValidateDetectsTamperedTransaction(t *testing.T) {
	bc := newTestChain(t, aliceBob)
	if result := bc.Validate(); !result.Valid {
		t.Fatalf("fresh chain should be valid, got %s at block %d", result.Reason, result.Index)
	}

	bc.blocks[1].Transactions[0] = "Alice pays Bob 100 BTC"

	expectResult(t, bc.Validate(), 1, ReasonHashMismatch)
}

// TestValidateDetectsReplacedTransactions tampers through the public accessor.
func TestValidateDetectsReplacedTransactions(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave)

	block, err := bc.GetByIndex(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block.ReplaceTransactions(charlieDave[:2])

	expectResult(t, bc.Validate(), 2, ReasonHashMismatch)
}

// TestValidateDetectsEmptiedBatch verifies that a block whose batch was
// emptied cannot recompute its hash and is reported.
func TestValidateDetectsEmptiedBatch(t *testing.T) {
	bc := newTestChain(t, aliceBob)
	bc.blocks[1].ReplaceTransactions(nil)

	expectResult(t, bc.Validate(), 1, ReasonHashMismatch)
}

// TestVerifyTamperedBlockHash verifies that overwriting a stored hash is detected.
func TestVerifyTamperedBlockHash(t *testing.T) {
	bc := newTestChain(t, aliceBob)
	bc.blocks[1].Hash = "tamperedhash"

	expectResult(t, bc.Validate(), 1, ReasonHashMismatch)
}

// TestValidateBrokenLinkResealed rewrites a previous hash and reseals the block
// so its own hash is consistent again; the broken link must be reported at
// that block and validation must not go further.
func TestValidateBrokenLinkResealed(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave)
	if err := bc.Verify(); err != nil {
		t.Fatalf("fresh chain should be valid: %v", err)
	}

	bc.blocks[1].PrevHash = hashing.SumString("somewhere else")
	resealed, err := bc.blocks[1].RecomputeHash()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bc.blocks[1].Hash = resealed
	// block 2 now links to a hash that no longer exists; it must not be reached
	bc.blocks[2].Transactions[0] = "forged"

	expectResult(t, bc.Validate(), 1, ReasonLinkMismatch)
}

// TestValidateBrokenLinkNotResealed rewrites a previous hash without resealing;
// the header hash no longer matches.
func TestValidateBrokenLinkNotResealed(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave)
	bc.blocks[1].PrevHash = "wronghash"

	expectResult(t, bc.Validate(), 1, ReasonHashMismatch)
}

// TestValidateStopsAtFirstBreak tampers two blocks and expects only the first
// to be reported.
func TestValidateStopsAtFirstBreak(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave, aliceBob)
	bc.blocks[3].Transactions[1] = "forged"
	bc.blocks[2].Transactions[1] = "forged"

	expectResult(t, bc.Validate(), 2, ReasonHashMismatch)
}

// TestValidateDetectsReorderedBlocks swaps two blocks.
func TestValidateDetectsReorderedBlocks(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave)
	bc.blocks[1], bc.blocks[2] = bc.blocks[2], bc.blocks[1]

	expectResult(t, bc.Validate(), 1, ReasonLinkMismatch)
}

// TestValidateDetectsDeletedBlock removes a block from the middle of the chain.
func TestValidateDetectsDeletedBlock(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave, aliceBob)
	bc.blocks = append(bc.blocks[:1], bc.blocks[2:]...)

	expectResult(t, bc.Validate(), 1, ReasonLinkMismatch)
}

// TestVerifyInvalidGenesis verifies that the genesis block is checked like
// every other block.
func TestVerifyInvalidGenesis(t *testing.T) {
	bc := newTestChain(t, aliceBob)
	bc.blocks[0].PrevHash = "invalid"
	expectResult(t, bc.Validate(), 0, ReasonHashMismatch)

	resealed, err := bc.blocks[0].RecomputeHash()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bc.blocks[0].Hash = resealed
	expectResult(t, bc.Validate(), 0, ReasonLinkMismatch)
}

// TestVerifyErrors verifies the error surface of Verify.
func TestVerifyErrors(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave)
	bc.blocks[2].Transactions[2] = "forged"

	err := bc.Verify()
	if !errors.Is(err, ErrHashMismatch) || errors.Is(err, ErrLinkMismatch) {
		t.Fatalf("expected a hash mismatch error, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Index != 2 {
		t.Fatalf("expected *ValidationError at block 2, got %v", err)
	}
	if err.Error() != "block 2 invalid: hash mismatch" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

// TestVerifyEmptyBlockchain verifies that a zero-value Blockchain, which never
// went through NewBlockchain, is reported as empty rather than valid and
// refuses appends.
func TestVerifyEmptyBlockchain(t *testing.T) {
	bc := &Blockchain{blocks: []Block{}}

	if err := bc.Verify(); !errors.Is(err, ErrEmptyChain) {
		t.Fatalf("expected ErrEmptyChain, got %v", err)
	}
	if _, err := bc.Append(aliceBob); !errors.Is(err, ErrEmptyChain) {
		t.Fatalf("expected ErrEmptyChain on append, got %v", err)
	}
}

// TestGetLatestBlock verifies that GetLatest returns the tail of the chain.
func TestGetLatestBlock(t *testing.T) {
	bc := newTestChain(t, aliceBob, charlieDave)

	latest, err := bc.GetLatest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.Index != 2 {
		t.Fatalf("latest block index should be 2, got %d", latest.Index)
	}
}

// TestGetLatestEmptyBlockchain verifies that GetLatest returns an error when called on an
// empty blockchain.
func TestGetLatestEmptyBlockchain(t *testing.T) {
	bc := &Blockchain{blocks: []Block{}}

	if _, err := bc.GetLatest(); err == nil {
		t.Fatal("expected error for empty blockchain, got nil")
	}
}

// TestGetByIndexOutOfRange verifies that GetByIndex returns an error for invalid indices.
func TestGetByIndexOutOfRange(t *testing.T) {
	bc := newTestChain(t)

	for _, i := range []int{-1, 1, 10} {
		if _, err := bc.GetByIndex(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange for %d, got %v", i, err)
		}
	}
}

// TestGetByIndexRefetchAfterAppend verifies that a block fetched after the
// last append is the one Validate checks.
func TestGetByIndexRefetchAfterAppend(t *testing.T) {
	bc := newTestChain(t, aliceBob)
	if _, err := bc.GetByIndex(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := bc.Append(charlieDave); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	block, err := bc.GetByIndex(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block.ReplaceTransactions([]Transaction{"Alice pays Bob 100 BTC"})

	expectResult(t, bc.Validate(), 1, ReasonHashMismatch)
}

// TestAppendAfterCurrentTail verifies that AppendAfter links the block to
// the tail it was given.
func TestAppendAfterCurrentTail(t *testing.T) {
	bc := newTestChain(t, aliceBob)
	tail, err := bc.GetLatest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	block, err := bc.AppendAfter(tail.Hash, charlieDave)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.Index != 2 || block.PrevHash != tail.Hash {
		t.Fatalf("expected block 2 after %s, got block %d after %s", tail.Hash, block.Index, block.PrevHash)
	}
	if err := bc.Verify(); err != nil {
		t.Fatalf("chain should be valid: %v", err)
	}
}

// TestAppendAfterMovedTail verifies that AppendAfter refuses a stale tail
// and leaves the chain unchanged.
func TestAppendAfterMovedTail(t *testing.T) {
	bc := newTestChain(t)
	genesis, err := bc.GetLatest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := bc.Append(aliceBob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := bc.AppendAfter(genesis.Hash, charlieDave); !errors.Is(err, ErrTailMoved) {
		t.Fatalf("expected ErrTailMoved, got %v", err)
	}
	if bc.Len() != 2 {
		t.Fatalf("expected 2 blocks after the refused append, got %d", bc.Len())
	}

	empty := &Blockchain{}
	if _, err := empty.AppendAfter(GenesisPrevHash, aliceBob); !errors.Is(err, ErrEmptyChain) {
		t.Fatalf("expected ErrEmptyChain, got %v", err)
	}
}

// TestBlocksReturnsSnapshot verifies that the snapshot cannot be used to
// tamper with the chain.
func TestBlocksReturnsSnapshot(t *testing.T) {
	bc := newTestChain(t, aliceBob)

	snapshot := bc.Blocks()
	snapshot[1].Transactions[0] = "forged"
	snapshot[1].Hash = "forged"

	if err := bc.Verify(); err != nil {
		t.Fatalf("chain should be unaffected by snapshot edits: %v", err)
	}
}

// TestConcurrentAppend verifies that appends from many goroutines are
// serialized into one valid chain.
func TestConcurrentAppend(t *testing.T) {
	bc := newTestChain(t)
	const writers, perWriter = 8, 10

	var wg sync.WaitGroup
	errChan := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				tx := Transaction(fmt.Sprintf("writer %d tx %d", w, i))
				if _, err := bc.Append([]Transaction{tx}); err != nil {
					errChan <- err
				}
				bc.Validate()
			}
		}(w)
	}
	wg.Wait()
	close(errChan)
	for err := range errChan {
		t.Fatalf("append failed: %v", err)
	}

	if bc.Len() != 1+writers*perWriter {
		t.Fatalf("expected %d blocks, got %d", 1+writers*perWriter, bc.Len())
	}
	for i, b := range bc.Blocks() {
		if b.Index != i {
			t.Fatalf("block at position %d has index %d", i, b.Index)
		}
	}
	if err := bc.Verify(); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
}
