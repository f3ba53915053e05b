package consensus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luca-patrignani/merkle-ledger/ledger"
)

func TestSignTransactionRoundTrip(t *testing.T) {
	for _, s := range schemes() {
		t.Run(s.Name(), func(t *testing.T) {
			keys, err := s.GenerateKey()
			require.NoError(t, err)

			tx, err := SignTransaction(s, keys, []byte("Alice pays Bob 10 BTC"))
			require.NoError(t, err)

			st, err := VerifyTransaction(tx)
			require.NoError(t, err)
			assert.Equal(t, s.Name(), st.Scheme)
			assert.Equal(t, []byte("Alice pays Bob 10 BTC"), st.Payload)
			assert.Equal(t, keys.Public, st.Public)
		})
	}
}

func TestVerifyTransactionDetectsTampering(t *testing.T) {
	s := Ed25519Scheme{}
	keys, err := s.GenerateKey()
	require.NoError(t, err)
	tx, err := SignTransaction(s, keys, []byte("Alice pays Bob 10 BTC"))
	require.NoError(t, err)

	var st SignedTransaction
	require.NoError(t, json.Unmarshal(tx.Bytes(), &st))
	st.Payload = []byte("Alice pays Bob 100 BTC")
	forged, err := json.Marshal(st)
	require.NoError(t, err)

	_, err = VerifyTransaction(ledger.Transaction(forged))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyTransactionRejectsUnsigned(t *testing.T) {
	_, err := VerifyTransaction("Alice pays Bob 10 BTC")
	assert.Error(t, err)

	unsigned, err := json.Marshal(SignedTransaction{Scheme: "ed25519", Payload: []byte("x")})
	require.NoError(t, err)
	_, err = VerifyTransaction(ledger.Transaction(unsigned))
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVoteSignature(t *testing.T) {
	s := NewSchnorrScheme()
	keys, err := s.GenerateKey()
	require.NoError(t, err)

	vote := Vote{Voter: "alice", BlockHash: "abc"}
	ok, err := vote.VerifySignature(s, keys.Public)
	assert.ErrorIs(t, err, ErrMissingSignature)
	assert.False(t, ok)

	require.NoError(t, vote.Sign(s, keys.Private))
	ok, err = vote.VerifySignature(s, keys.Public)
	require.NoError(t, err)
	assert.True(t, ok)

	vote.BlockHash = "abd"
	ok, err = vote.VerifySignature(s, keys.Public)
	require.NoError(t, err)
	assert.False(t, ok)
}
