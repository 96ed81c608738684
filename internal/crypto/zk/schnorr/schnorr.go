package schnorr

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"math/big"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
)

// Proof represents a Schnorr proof of knowledge of a discrete logarithm.
// Proves knowledge of x such that X = x * G.
type Proof struct {
	R *curves.Point // Commitment R = k * G
	S *big.Int      // Response s = k + e * x
}

// Prove generates a Schnorr proof for the secret x, public key X = x*G.
// label binds the proof to its context; Verify must be given the same one.
func Prove(random io.Reader, x *big.Int, X *curves.Point, label []byte) (*Proof, error) {
	if x == nil || X == nil || X.Curve() == nil {
		return nil, errors.New("schnorr: inputs cannot be nil")
	}
	curve := X.Curve()
	n := curve.Params().N

	// 1. Generate random nonce k
	k, err := curve.NewScalar(random)
	if err != nil {
		return nil, err
	}

	// 2. Compute R = k * G
	R, err := curve.ScalarBaseMult(k)
	if err != nil {
		return nil, err
	}

	// 3. Compute challenge e = H(X, R, label)
	e := challenge(X, R, label)

	// 4. Compute s = k + e * x mod n
	s := new(big.Int).Mul(e, x)
	s.Add(s, k)
	s.Mod(s, n)

	return &Proof{
		R: R,
		S: s,
	}, nil
}

// Verify checks the validity of the Schnorr proof for public key X.
func (p *Proof) Verify(X *curves.Point, label []byte) bool {
	if p == nil || p.R == nil || p.S == nil || X == nil || X.Curve() == nil {
		return false
	}
	curve := X.Curve()
	n := curve.Params().N

	// Check if s is in [0, n-1]
	if p.S.Sign() < 0 || p.S.Cmp(n) >= 0 {
		return false
	}
	if !curve.IsOnCurve(p.R) || X.IsInfinity() {
		return false
	}

	// 1. Compute challenge e = H(X, R, label)
	e := challenge(X, p.R, label)

	// 2. Verify s*G = R + e*X
	lhs, err := curve.ScalarBaseMult(p.S)
	if err != nil {
		return false
	}
	eX, err := curve.ScalarMult(e, X)
	if err != nil {
		return false
	}
	rhs, err := curve.Add(p.R, eX)
	if err != nil {
		return false
	}
	return lhs.Equal(rhs)
}

// challenge computes H(curve, X, R, label) mod n. Coordinates are written
// at the fixed width of the field so the encoding is unambiguous.
func challenge(X, R *curves.Point, label []byte) *big.Int {
	params := X.Curve().Params()
	size := params.ByteSize()

	h := sha256.New()
	h.Write([]byte(params.Name))
	for _, p := range []*curves.Point{X, R} {
		buf := make([]byte, 2*size)
		if !p.IsInfinity() {
			p.X().FillBytes(buf[:size])
			p.Y().FillBytes(buf[size:])
		}
		h.Write(buf)
	}
	h.Write(label)

	e := new(big.Int).SetBytes(h.Sum(nil))
	e.Mod(e, params.N)
	return e
}

type proofJSON struct {
	R *curves.Point `json:"r"`
	S string        `json:"s"`
}

// MarshalJSON encodes the response as a decimal string.
func (p *Proof) MarshalJSON() ([]byte, error) {
	if p.R == nil || p.S == nil {
		return nil, errors.New("schnorr: incomplete proof")
	}
	return json.Marshal(&proofJSON{R: p.R, S: p.S.String()})
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var tmp proofJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	s, ok := new(big.Int).SetString(tmp.S, 10)
	if !ok || tmp.R == nil {
		return errors.New("schnorr: malformed proof")
	}
	p.R, p.S = tmp.R, s
	return nil
}
