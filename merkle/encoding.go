package merkle

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// MarshalBinary encodes the proof as deterministic CBOR: an array of
// [sibling, siblingIsLeft] pairs, leaf level first.
func (p Proof) MarshalBinary() ([]byte, error) {
	steps := []Step(p)
	if steps == nil {
		steps = []Step{}
	}
	return encMode.Marshal(steps)
}

// UnmarshalBinary decodes a proof written by MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var steps []Step
	if err := cbor.Unmarshal(data, &steps); err != nil {
		return fmt.Errorf("merkle: decode proof: %w", err)
	}
	*p = steps
	return nil
}
