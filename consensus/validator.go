package consensus

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luca-patrignani/merkle-ledger/ledger"
)

var (
	// ErrInvalidSignature is returned when an envelope or vote does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMissingSignature is returned when an envelope carries no signature.
	ErrMissingSignature = errors.New("missing signature")
)

// serialize returns the JSON form of the envelope with the Signature field
// cleared, so the signature is not part of the signed data.
func (st *SignedTransaction) serialize() ([]byte, error) {
	tmp := *st
	tmp.Signature = nil
	return json.Marshal(tmp)
}

// serialize returns the JSON form of the vote with the Signature field
// cleared.
func (v *Vote) serialize() ([]byte, error) {
	tmp := *v
	tmp.Signature = nil
	return json.Marshal(tmp)
}

// Sign signs the vote with the given scheme and private key.
func (v *Vote) Sign(scheme Scheme, private []byte) error {
	b, err := v.serialize()
	if err != nil {
		return err
	}
	sig, err := scheme.Sign(private, b)
	if err != nil {
		return err
	}
	v.Signature = sig
	return nil
}

// VerifySignature reports whether the vote was signed by public.
func (v *Vote) VerifySignature(scheme Scheme, public []byte) (bool, error) {
	if len(v.Signature) == 0 {
		return false, ErrMissingSignature
	}
	b, err := v.serialize()
	if err != nil {
		return false, err
	}
	return scheme.Verify(public, b, v.Signature), nil
}

// SignTransaction wraps payload in a signed envelope and returns it as a
// ledger transaction. The ledger treats the result as opaque text.
func SignTransaction(scheme Scheme, keys KeyPair, payload []byte) (ledger.Transaction, error) {
	st := SignedTransaction{
		Scheme:  scheme.Name(),
		Payload: payload,
		Public:  keys.Public,
	}
	b, err := st.serialize()
	if err != nil {
		return "", err
	}
	st.Signature, err = scheme.Sign(keys.Private, b)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return ledger.Transaction(out), nil
}

// VerifyTransaction decodes a transaction produced by SignTransaction and
// checks its signature with the scheme named in the envelope.
func VerifyTransaction(tx ledger.Transaction) (SignedTransaction, error) {
	var st SignedTransaction
	if err := json.Unmarshal(tx.Bytes(), &st); err != nil {
		return SignedTransaction{}, fmt.Errorf("decode envelope: %w", err)
	}
	if len(st.Signature) == 0 {
		return st, ErrMissingSignature
	}
	scheme, err := SchemeByName(st.Scheme)
	if err != nil {
		return st, err
	}
	b, err := st.serialize()
	if err != nil {
		return st, err
	}
	if !scheme.Verify(st.Public, b, st.Signature) {
		return st, ErrInvalidSignature
	}
	return st, nil
}
