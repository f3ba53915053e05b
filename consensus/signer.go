package consensus

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
	"go.dedis.ch/kyber/v4/util/key"
)

// ErrInvalidKey is returned when a key does not decode for the scheme.
var ErrInvalidKey = errors.New("invalid key")

// Ed25519Scheme signs with crypto/ed25519.
type Ed25519Scheme struct{}

func (Ed25519Scheme) Name() string { return "ed25519" }

func (Ed25519Scheme) GenerateKey() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

func (Ed25519Scheme) Sign(private, payload []byte) ([]byte, error) {
	if len(private) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("ed25519: %w: private key has %d bytes", ErrInvalidKey, len(private))
	}
	return ed25519.Sign(ed25519.PrivateKey(private), payload), nil
}

func (Ed25519Scheme) Verify(public, payload, sig []byte) bool {
	if len(public) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(public), payload, sig)
}

// SchnorrScheme signs with kyber Schnorr signatures over a kyber suite.
type SchnorrScheme struct {
	suite suites.Suite
}

// NewSchnorrScheme returns a Schnorr scheme over the Ed25519 group.
func NewSchnorrScheme() SchnorrScheme {
	return SchnorrScheme{suite: suites.MustFind("Ed25519")}
}

func (s SchnorrScheme) Name() string { return "schnorr-" + s.suite.String() }

func (s SchnorrScheme) GenerateKey() (KeyPair, error) {
	kp := key.NewKeyPair(s.suite)
	pub, err := kp.Public.MarshalBinary()
	if err != nil {
		return KeyPair{}, err
	}
	priv, err := kp.Private.MarshalBinary()
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

func (s SchnorrScheme) Sign(private, payload []byte) ([]byte, error) {
	scalar := s.suite.Scalar()
	if err := scalar.UnmarshalBinary(private); err != nil {
		return nil, fmt.Errorf("schnorr: %w: %v", ErrInvalidKey, err)
	}
	return schnorr.Sign(s.suite, scalar, payload)
}

func (s SchnorrScheme) Verify(public, payload, sig []byte) bool {
	point, err := s.point(public)
	if err != nil {
		return false
	}
	return schnorr.Verify(s.suite, point, payload, sig) == nil
}

func (s SchnorrScheme) point(public []byte) (kyber.Point, error) {
	point := s.suite.Point()
	if err := point.UnmarshalBinary(public); err != nil {
		return nil, err
	}
	return point, nil
}

// SchemeByName resolves the scheme named in a signed envelope.
func SchemeByName(name string) (Scheme, error) {
	sc := NewSchnorrScheme()
	switch name {
	case Ed25519Scheme{}.Name():
		return Ed25519Scheme{}, nil
	case sc.Name():
		return sc, nil
	}
	return nil, fmt.Errorf("unknown signature scheme %q", name)
}
