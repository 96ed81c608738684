package curves

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointJSON(t *testing.T) {
	c := Secp256k1()
	p := mustMul(t, c, 5, c.Generator())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"curve":"secp256k1"`)

	var got Point
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Equal(p))

	data, err = json.Marshal(c.Infinity())
	require.NoError(t, err)
	assert.JSONEq(t, `{"curve":"secp256k1"}`, string(data))

	var inf Point
	require.NoError(t, json.Unmarshal(data, &inf))
	assert.True(t, inf.Equal(c.Infinity()))
}

func TestPointCBOR(t *testing.T) {
	for _, c := range allCurves() {
		p := mustMul(t, c, 77, c.Generator())

		data, err := cbor.Marshal(p)
		require.NoError(t, err)

		var got Point
		require.NoError(t, cbor.Unmarshal(data, &got))
		assert.True(t, got.Equal(p), c.Params().Name)
	}
}

func TestPointUnmarshalRejects(t *testing.T) {
	g := Secp256k1().Generator()
	y := new(big.Int).Add(g.Y(), big.NewInt(1))

	var p Point
	err := json.Unmarshal([]byte(`{"x":"`+g.X().String()+`","y":"`+y.String()+`","curve":"secp256k1"}`), &p)
	assert.ErrorIs(t, err, ErrPointNotOnCurve)

	xp := new(big.Int).Add(g.X(), Secp256k1().Params().P)
	err = json.Unmarshal([]byte(`{"x":"`+xp.String()+`","y":"`+g.Y().String()+`","curve":"secp256k1"}`), &p)
	assert.ErrorIs(t, err, ErrPointNotOnCurve)

	err = json.Unmarshal([]byte(`{"x":"1","y":"2","curve":"p256"}`), &p)
	assert.ErrorIs(t, err, ErrUnknownCurve)

	err = json.Unmarshal([]byte(`{"x":"zz","y":"2","curve":"secp256k1"}`), &p)
	assert.Error(t, err)

	_, err = json.Marshal(&Point{})
	assert.Error(t, err)
}
