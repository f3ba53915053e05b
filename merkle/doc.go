// Package merkle builds binary hash trees over transaction batches and
// produces and checks inclusion proofs against their roots.
//
// # Construction
//
// Each payload is hashed into a leaf. Layers are reduced pairwise, left to
// right, with hashing.Combine until one digest remains. A layer of odd length
// is padded with a copy of its last digest before pairing, so a batch of
// three transactions pairs the third leaf with itself. A batch of one has the
// leaf digest as its root. An empty batch is rejected with ErrEmptyBatch.
//
// # Proofs
//
// A Proof lists one sibling per level. Verify replays the path from the leaf
// payload alone, which is what makes a proof cheap to check: the verifier
// needs the leaf, the proof and the root, never the batch.
package merkle
