// Package ledger implements a tamper-evident, append-only chain of blocks.
// Each block commits to a batch of transactions through a Merkle root and to
// its predecessor through the predecessor's hash.
//
// # Core Components
//
// Block: A header (index, timestamp, Merkle root, previous hash, hash) bound
// to the transaction batch it commits to.
//
// Blockchain: The ordered sequence of blocks, starting from a genesis block
// whose previous hash is "0".
//
// # Security Properties
//
// The blockchain provides:
//   - Append-only growth: blocks are only added at the tail
//   - Tamper detection: Validate recomputes every Merkle root from the live
//     transactions, so altering a committed transaction changes the block hash
//   - Link checking: a removed, inserted or reordered block breaks the
//     previous-hash link of its successor
//   - Inclusion proofs: a single transaction can be shown to belong to a
//     block without the rest of the batch
//
// # Usage
//
// Create a blockchain, append transaction batches, and call Validate (or
// Verify for an error) whenever the chain must be trusted. A failed
// validation names the first broken block; nothing after it is checked.
package ledger
