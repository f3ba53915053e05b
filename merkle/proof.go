package merkle

import (
	"fmt"

	"github.com/luca-patrignani/merkle-ledger/hashing"
)

// Step is one level of an inclusion path. SiblingIsLeft is true when the
// node being proven is the right child, so the sibling is hashed first.
type Step struct {
	_             struct{}       `cbor:",toarray"`
	Sibling       hashing.Digest `json:"sibling"`
	SiblingIsLeft bool           `json:"sibling_is_left"`
}

// Proof is the ordered path of siblings from a leaf up to just below the root.
type Proof []Step

// Prove returns the inclusion path of the leaf at leafIndex.
func (t *Tree) Prove(leafIndex int) (Proof, error) {
	if leafIndex < 0 || leafIndex >= len(t.leaves) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, leafIndex, len(t.leaves))
	}

	proof := make(Proof, 0, t.Depth())
	pos := leafIndex
	for _, layer := range t.layers[:len(t.layers)-1] {
		layer = pad(layer)
		isRight := pos%2 == 1
		sibling := pos + 1
		if isRight {
			sibling = pos - 1
		}
		proof = append(proof, Step{Sibling: layer[sibling], SiblingIsLeft: isRight})
		pos /= 2
	}
	return proof, nil
}

// Verify reports whether leaf, combined with proof, hashes up to root.
// It needs neither the batch nor the tree.
func Verify[P Payload](leaf P, proof Proof, root hashing.Digest) bool {
	return VerifyDigest(hashing.Sum([]byte(leaf)), proof, root)
}

// VerifyDigest is Verify for a leaf that has already been hashed.
func VerifyDigest(leaf hashing.Digest, proof Proof, root hashing.Digest) bool {
	current := leaf
	for _, step := range proof {
		if step.SiblingIsLeft {
			current = hashing.Combine(step.Sibling, current)
		} else {
			current = hashing.Combine(current, step.Sibling)
		}
	}
	return current == root
}
