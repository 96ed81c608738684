package curves

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// pointWire is the serialized form of a Point: decimal coordinates and the
// registry name of the curve. Both coordinates are empty for the point at
// infinity.
type pointWire struct {
	X     string `json:"x,omitempty" cbor:"x,omitempty"`
	Y     string `json:"y,omitempty" cbor:"y,omitempty"`
	Curve string `json:"curve" cbor:"curve"`
}

func (p *Point) wire() (*pointWire, error) {
	if p.curve == nil {
		return nil, fmt.Errorf("%w: point has no curve", ErrPointNotOnCurve)
	}
	w := &pointWire{Curve: p.curve.Params().Name}
	if !p.IsInfinity() {
		w.X = p.x.String()
		w.Y = p.y.String()
	}
	return w, nil
}

func (p *Point) fromWire(w *pointWire) error {
	curve, err := New(w.Curve)
	if err != nil {
		return err
	}
	if w.X == "" && w.Y == "" {
		*p = *curve.Infinity()
		return nil
	}
	x, ok := new(big.Int).SetString(w.X, 10)
	if !ok {
		return fmt.Errorf("curves: invalid x coordinate %q", w.X)
	}
	y, ok := new(big.Int).SetString(w.Y, 10)
	if !ok {
		return fmt.Errorf("curves: invalid y coordinate %q", w.Y)
	}
	q, err := curve.NewPoint(x, y)
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

// MarshalJSON serializes the point to JSON.
func (p *Point) MarshalJSON() ([]byte, error) {
	w, err := p.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON deserializes the point from JSON, checking curve membership.
func (p *Point) UnmarshalJSON(data []byte) error {
	var w pointWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}
	return p.fromWire(&w)
}

// MarshalCBOR serializes the point to CBOR.
func (p *Point) MarshalCBOR() ([]byte, error) {
	w, err := p.wire()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(w)
}

// UnmarshalCBOR deserializes the point from CBOR, checking curve membership.
func (p *Point) UnmarshalCBOR(data []byte) error {
	var w pointWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}
	return p.fromWire(&w)
}
