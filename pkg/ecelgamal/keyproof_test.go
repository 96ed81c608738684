package ecelgamal

import (
	"testing"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/elgamal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyProof(t *testing.T) {
	s, err := NewSession(DefaultParameters(curves.CurveTypeSecp256k1))
	require.NoError(t, err)
	kp, err := s.GenerateKeyPair()
	require.NoError(t, err)
	other, err := s.GenerateKeyPair()
	require.NoError(t, err)

	label := []byte("recipient registration")
	proof, err := s.ProveKey(kp, label)
	require.NoError(t, err)

	assert.NoError(t, s.VerifyKey(kp.Public, proof, label))
	assert.ErrorIs(t, s.VerifyKey(other.Public, proof, label), ErrInvalidKeyProof)
	assert.ErrorIs(t, s.VerifyKey(kp.Public, proof, []byte("replay")), ErrInvalidKeyProof)
	assert.ErrorIs(t, s.VerifyKey(kp.Public, nil, label), ErrInvalidKeyProof)
	assert.ErrorIs(t, s.VerifyKey(curves.Secp192k1().Generator(), proof, label), elgamal.ErrInvalidPublicKey)

	_, err = s.ProveKey(nil, label)
	assert.ErrorIs(t, err, elgamal.ErrInvalidPublicKey)
}
