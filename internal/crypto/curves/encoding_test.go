package curves

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoRandomness = errors.New("no randomness")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errNoRandomness }

func TestMaxEncodeLen(t *testing.T) {
	assert.Equal(t, 21, Secp192k1().MaxEncodeLen())
	assert.Equal(t, 25, Secp224k1().MaxEncodeLen())
	assert.Equal(t, 29, Secp256k1().MaxEncodeLen())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, c := range allCurves() {
		c := c
		t.Run(c.Params().Name, func(t *testing.T) {
			for n := 1; n <= c.MaxEncodeLen(); n++ {
				for i := 0; i < 4; i++ {
					msg := make([]byte, n)
					_, err := rand.Read(msg)
					require.NoError(t, err)
					if i == 0 {
						// leading zero bytes must survive
						msg[0] = 0
					}

					p, err := c.EncodeBytes(rand.Reader, msg)
					require.NoError(t, err)
					require.True(t, c.IsOnCurve(p))

					got, err := c.DecodeBytes(p)
					require.NoError(t, err)
					assert.Equal(t, msg, got)
				}
			}
		})
	}
}

func TestEncodeFirstCandidateHasNoPadding(t *testing.T) {
	c := Secp256k1()

	// 0x03 || "hi!" is a valid x on secp256k1, so no random byte is read
	p, err := c.EncodeBytes(failingReader{}, []byte("hi!"))
	require.NoError(t, err)
	assert.Equal(t, append([]byte{3}, "hi!"...), p.X().Bytes())

	got, err := c.DecodeBytes(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi!"), got)
}

func TestEncodeRetries(t *testing.T) {
	c := Secp256k1()
	msg := []byte("a") // 0x01 || "a" is not a valid x on secp256k1

	_, err := c.EncodeBytesWithAttempts(rand.Reader, msg, 1)
	assert.ErrorIs(t, err, ErrEncodingExhausted)

	_, err = c.EncodeBytes(failingReader{}, msg)
	assert.ErrorIs(t, err, errNoRandomness)

	p, err := c.EncodeBytes(rand.Reader, msg)
	require.NoError(t, err)
	assert.Greater(t, len(p.X().Bytes()), 2)

	got, err := c.DecodeBytes(p)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestEncodeRedrawsPaddingAtCapacity(t *testing.T) {
	c := Secp256k1()
	msg := bytes.Repeat([]byte{0xab}, c.MaxEncodeLen())

	for i := 0; i < 20; i++ {
		p, err := c.EncodeBytes(rand.Reader, msg)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(p.X().Bytes()), c.Params().ByteSize()-1)
		assert.Equal(t, -1, p.X().Cmp(c.Params().P))

		got, err := c.DecodeBytes(p)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
}

func TestEncodeRejects(t *testing.T) {
	c := Secp256k1()

	_, err := c.EncodeBytes(rand.Reader, nil)
	assert.ErrorIs(t, err, ErrEmptyPlaintext)

	_, err = c.EncodeBytes(rand.Reader, make([]byte, c.MaxEncodeLen()+1))
	assert.ErrorIs(t, err, ErrPlaintextTooLong)

	_, err = Secp192k1().EncodeBytes(rand.Reader, make([]byte, 25))
	assert.ErrorIs(t, err, ErrPlaintextTooLong)
}

func TestDecodeMalformed(t *testing.T) {
	c := Secp256k1()

	_, err := c.DecodeBytes(c.Infinity())
	assert.ErrorIs(t, err, ErrMalformedPoint)

	// Gx starts with 0x79 but only has 32 bytes
	_, err = c.DecodeBytes(c.Generator())
	assert.ErrorIs(t, err, ErrMalformedPoint)

	_, err = c.DecodeBytes(Secp224k1().Generator())
	assert.ErrorIs(t, err, ErrPointNotOnCurve)
}

func BenchmarkEncodeBytes(b *testing.B) {
	c := Secp256k1()
	msg := []byte("the quick brown fox jumps")
	for i := 0; i < b.N; i++ {
		if _, err := c.EncodeBytes(rand.Reader, msg); err != nil {
			b.Fatal(err)
		}
	}
}
