package merkle

import (
	"errors"

	"github.com/luca-patrignani/merkle-ledger/hashing"
)

var (
	// ErrEmptyBatch is returned when a tree is requested over zero payloads.
	ErrEmptyBatch = errors.New("merkle: empty transaction batch")
	// ErrIndexOutOfRange is returned when a proof is requested for a leaf the tree does not have.
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")
)

// Payload is the set of types a leaf can be built from.
type Payload interface {
	~string | ~[]byte
}

// Tree is a binary hash tree over an ordered batch of payloads.
// It is never modified after Build returns.
type Tree struct {
	leaves []hashing.Digest
	// layers[0] holds the leaves, the last layer holds the root alone.
	// Every layer below the root has even length.
	layers [][]hashing.Digest
}

// Build hashes every payload into a leaf and reduces the leaves pairwise
// until a single digest remains. A layer of odd length is padded with a copy
// of its last digest before pairing; the copy is not a leaf.
func Build[P Payload](payloads []P) (*Tree, error) {
	if len(payloads) == 0 {
		return nil, ErrEmptyBatch
	}

	leaves := make([]hashing.Digest, len(payloads))
	for i, p := range payloads {
		leaves[i] = hashing.Sum([]byte(p))
	}

	layer := make([]hashing.Digest, len(leaves))
	copy(layer, leaves)
	var layers [][]hashing.Digest
	for len(layer) > 1 {
		layer = pad(layer)
		layers = append(layers, layer)

		next := make([]hashing.Digest, 0, len(layer)/2)
		for i := 0; i < len(layer); i += 2 {
			next = append(next, hashing.Combine(layer[i], layer[i+1]))
		}
		layer = next
	}
	layers = append(layers, layer)

	return &Tree{leaves: leaves, layers: layers}, nil
}

// pad duplicates the last element of an odd-length layer.
func pad(layer []hashing.Digest) []hashing.Digest {
	if len(layer)%2 == 0 {
		return layer
	}
	return append(layer, layer[len(layer)-1])
}

// Root returns the digest at the top of the tree. For a single payload this
// is the leaf digest itself.
func (t *Tree) Root() hashing.Digest {
	return t.layers[len(t.layers)-1][0]
}

// LeafCount returns the number of payloads the tree was built from.
func (t *Tree) LeafCount() int {
	return len(t.leaves)
}

// Leaves returns a copy of the leaf digests in insertion order, without padding.
func (t *Tree) Leaves() []hashing.Digest {
	leaves := make([]hashing.Digest, len(t.leaves))
	copy(leaves, t.leaves)
	return leaves
}

// Layers returns a copy of every layer, leaves first and root last.
func (t *Tree) Layers() [][]hashing.Digest {
	layers := make([][]hashing.Digest, len(t.layers))
	for i, l := range t.layers {
		layers[i] = make([]hashing.Digest, len(l))
		copy(layers[i], l)
	}
	return layers
}

// Depth is the number of layers below the root, which is also the length of
// every proof the tree produces.
func (t *Tree) Depth() int {
	return len(t.layers) - 1
}
