package ecelgamal

import (
	"errors"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/elgamal"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/zk/schnorr"
)

var ErrInvalidKeyProof = errors.New("ecelgamal: key ownership proof does not verify")

// ProveKey proves knowledge of the private key behind kp.Public. label
// binds the proof to a context chosen by the verifier.
func (s *Session) ProveKey(kp *elgamal.KeyPair, label []byte) (*schnorr.Proof, error) {
	if kp == nil || kp.Public == nil || kp.Public.Curve() == nil || !kp.Public.Curve().Params().Equal(s.curve.Params()) {
		return nil, elgamal.ErrInvalidPublicKey
	}
	return schnorr.Prove(s.random, kp.Private, kp.Public, label)
}

// VerifyKey checks a proof produced by ProveKey.
func (s *Session) VerifyKey(publicKey *curves.Point, proof *schnorr.Proof, label []byte) error {
	if publicKey == nil || publicKey.Curve() == nil || !publicKey.Curve().Params().Equal(s.curve.Params()) {
		return elgamal.ErrInvalidPublicKey
	}
	if !proof.Verify(publicKey, label) {
		return ErrInvalidKeyProof
	}
	return nil
}
