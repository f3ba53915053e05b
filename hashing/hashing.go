// Package hashing provides the digest function shared by the Merkle tree and
// the ledger. Every digest is the lowercase hex encoding of a SHA-256 sum, and
// digests of digests are computed over the concatenation of their hex strings.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length in characters of a hex encoded digest.
const Size = sha256.Size * 2

// Digest is the hex representation of a SHA-256 sum.
type Digest string

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	hash := sha256.Sum256(data)
	return Digest(hex.EncodeToString(hash[:]))
}

// SumString returns the digest of the bytes of s.
func SumString(s string) Digest {
	return Sum([]byte(s))
}

// Combine hashes the concatenation of the hex strings of left and right.
// Tree building, proof generation and proof verification all go through here.
func Combine(left, right Digest) Digest {
	return SumString(string(left) + string(right))
}

// Short returns the first 16 characters of the digest.
func (d Digest) Short() string {
	if len(d) <= 16 {
		return string(d)
	}
	return string(d[:16])
}

func (d Digest) String() string {
	return string(d)
}
