package elgamal

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
)

// Ciphertext is the encryption of one chunk. K is the ephemeral scalar used
// to produce it; it is kept for diagnostics and is not needed to decrypt.
type Ciphertext struct {
	U *curves.Point
	V *curves.Point
	K *big.Int
}

// Curve returns the curve of the ciphertext points.
func (z *Ciphertext) Curve() curves.Curve {
	if z == nil || z.V == nil {
		return nil
	}
	return z.V.Curve()
}

// Decrypt decrypts the ciphertext with the given private key.
func (z *Ciphertext) Decrypt(privateKey *big.Int) ([]byte, error) {
	return Decrypt(privateKey, z.U, z.V)
}

// String returns a string representation of the Ciphertext.
func (z *Ciphertext) String() string {
	if z == nil || z.U == nil || z.V == nil {
		return "{U: nil, V: nil}"
	}
	return fmt.Sprintf("{U: %s, V: %s}", z.U, z.V)
}

// MarshalJSON serializes the Ciphertext to JSON. K is included when set.
func (z *Ciphertext) MarshalJSON() ([]byte, error) {
	u, err := json.Marshal(z.U)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal u: %w", err)
	}
	v, err := json.Marshal(z.V)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal v: %w", err)
	}
	tmp := struct {
		U json.RawMessage `json:"u"`
		V json.RawMessage `json:"v"`
		K string          `json:"k,omitempty"`
	}{
		U: u,
		V: v,
	}
	if z.K != nil {
		tmp.K = z.K.String()
	}
	return json.Marshal(tmp)
}

// UnmarshalJSON deserializes the Ciphertext from JSON.
func (z *Ciphertext) UnmarshalJSON(data []byte) error {
	var tmp struct {
		U json.RawMessage `json:"u"`
		V json.RawMessage `json:"v"`
		K string          `json:"k,omitempty"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("failed to unmarshal ciphertext container: %w", err)
	}
	u, v := new(curves.Point), new(curves.Point)
	if err := json.Unmarshal(tmp.U, u); err != nil {
		return fmt.Errorf("failed to unmarshal u: %w", err)
	}
	if err := json.Unmarshal(tmp.V, v); err != nil {
		return fmt.Errorf("failed to unmarshal v: %w", err)
	}
	return z.set(u, v, tmp.K)
}

// MarshalCBOR serializes the Ciphertext to CBOR.
func (z *Ciphertext) MarshalCBOR() ([]byte, error) {
	if z.U == nil || z.V == nil {
		return nil, fmt.Errorf("%w: incomplete ciphertext", curves.ErrPointNotOnCurve)
	}
	u, err := z.U.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal u: %w", err)
	}
	v, err := z.V.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal v: %w", err)
	}
	tmp := struct {
		U cbor.RawMessage `cbor:"u"`
		V cbor.RawMessage `cbor:"v"`
		K string          `cbor:"k,omitempty"`
	}{
		U: u,
		V: v,
	}
	if z.K != nil {
		tmp.K = z.K.String()
	}
	return cbor.Marshal(tmp)
}

// UnmarshalCBOR deserializes the Ciphertext from CBOR.
func (z *Ciphertext) UnmarshalCBOR(data []byte) error {
	var tmp struct {
		U cbor.RawMessage `cbor:"u"`
		V cbor.RawMessage `cbor:"v"`
		K string          `cbor:"k,omitempty"`
	}
	if err := cbor.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("failed to unmarshal ciphertext container: %w", err)
	}
	u, v := new(curves.Point), new(curves.Point)
	if err := u.UnmarshalCBOR(tmp.U); err != nil {
		return fmt.Errorf("failed to unmarshal u: %w", err)
	}
	if err := v.UnmarshalCBOR(tmp.V); err != nil {
		return fmt.Errorf("failed to unmarshal v: %w", err)
	}
	return z.set(u, v, tmp.K)
}

func (z *Ciphertext) set(u, v *curves.Point, k string) error {
	if !u.Curve().Params().Equal(v.Curve().Params()) {
		return ErrCurveMismatch
	}
	z.U, z.V, z.K = u, v, nil
	if k != "" {
		kv, ok := new(big.Int).SetString(k, 10)
		if !ok {
			return fmt.Errorf("elgamal: invalid ephemeral scalar %q", k)
		}
		z.K = kv
	}
	return nil
}
