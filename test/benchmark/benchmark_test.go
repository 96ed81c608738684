package benchmark

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/elgamal"
	"github.com/smallyu/go-ecc-elgamal/pkg/ecelgamal"
)

// setupSession creates a session and key pair on the named curve.
func setupSession(b *testing.B, name string, workers int) (*ecelgamal.Session, *elgamal.KeyPair) {
	b.Helper()
	params := ecelgamal.DefaultParameters(name)
	if workers > 0 {
		params.Concurrency = workers
	}
	s, err := ecelgamal.NewSession(params)
	if err != nil {
		b.Fatalf("session setup failed: %v", err)
	}
	kp, err := s.GenerateKeyPair()
	if err != nil {
		b.Fatalf("key generation failed: %v", err)
	}
	return s, kp
}

func BenchmarkScalarBaseMult(b *testing.B) {
	for _, name := range curves.Names() {
		curve, err := curves.New(name)
		if err != nil {
			b.Fatal(err)
		}
		k, err := curve.NewScalar(rand.Reader)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := curve.ScalarBaseMult(k); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncodeChunk(b *testing.B) {
	for _, name := range curves.Names() {
		curve, err := curves.New(name)
		if err != nil {
			b.Fatal(err)
		}
		chunk := bytes.Repeat([]byte{'x'}, curve.MaxEncodeLen())
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := curve.EncodeBytes(rand.Reader, chunk); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncryptMessage(b *testing.B) {
	for _, size := range []int{25, 250, 2500} {
		for _, workers := range []int{1, 0} {
			name := fmt.Sprintf("bytes=%d/workers=%d", size, workers)
			b.Run(name, func(b *testing.B) {
				s, kp := setupSession(b, curves.CurveTypeSecp256k1, workers)
				msg := bytes.Repeat([]byte{'m'}, size)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := s.EncryptMessage(context.Background(), kp.Public, msg); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkDecryptMessage(b *testing.B) {
	for _, size := range []int{25, 250, 2500} {
		b.Run(fmt.Sprintf("bytes=%d", size), func(b *testing.B) {
			s, kp := setupSession(b, curves.CurveTypeSecp256k1, 0)
			cts, err := s.EncryptMessage(context.Background(), kp.Public, bytes.Repeat([]byte{'m'}, size))
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.DecryptMessage(context.Background(), kp.Private, cts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
