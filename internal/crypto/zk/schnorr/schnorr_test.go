package schnorr

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
)

func TestSchnorrProof(t *testing.T) {
	for _, name := range curves.Names() {
		curve, err := curves.New(name)
		if err != nil {
			t.Fatal(err)
		}
		t.Run(name, func(t *testing.T) {
			// 1. Generate a random secret x
			x, err := curve.NewScalar(rand.Reader)
			if err != nil {
				t.Fatalf("Failed to generate secret: %v", err)
			}

			// 2. Compute public key X = x * G
			X, err := curve.ScalarBaseMult(x)
			if err != nil {
				t.Fatal(err)
			}

			// 3. Generate Proof
			proof, err := Prove(rand.Reader, x, X, []byte("session-1"))
			if err != nil {
				t.Fatalf("Prove failed: %v", err)
			}

			// 4. Verify Proof
			if !proof.Verify(X, []byte("session-1")) {
				t.Fatal("Verify failed for valid proof")
			}
			if proof.Verify(X, []byte("session-2")) {
				t.Fatal("Verify passed with a different label")
			}
		})
	}
}

func TestSchnorrProofInvalid(t *testing.T) {
	curve := curves.Secp256k1()

	x, _ := curve.NewScalar(rand.Reader)
	X, _ := curve.ScalarBaseMult(x)
	proof, err := Prove(rand.Reader, x, X, nil)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	// Case A: Modify s
	tampered := &Proof{R: proof.R, S: new(big.Int).Add(proof.S, big.NewInt(1))}
	if tampered.Verify(X, nil) {
		t.Fatal("Verify passed for tampered s")
	}

	// Case B: Modify R
	R2, err := curve.Double(proof.R)
	if err != nil {
		t.Fatal(err)
	}
	tampered = &Proof{R: R2, S: proof.S}
	if tampered.Verify(X, nil) {
		t.Fatal("Verify passed for tampered R")
	}

	// Case C: Wrong public key
	Y, _ := curve.ScalarBaseMult(new(big.Int).Add(x, big.NewInt(1)))
	if proof.Verify(Y, nil) {
		t.Fatal("Verify passed for another public key")
	}

	// Case D: s out of range
	tampered = &Proof{R: proof.R, S: curve.Params().N}
	if tampered.Verify(X, nil) {
		t.Fatal("Verify passed for s = n")
	}

	// Case E: R from another curve
	tampered = &Proof{R: curves.Secp192k1().Generator(), S: proof.S}
	if tampered.Verify(X, nil) {
		t.Fatal("Verify passed for R on another curve")
	}

	if _, err := Prove(rand.Reader, nil, X, nil); err == nil {
		t.Fatal("Prove accepted a nil secret")
	}
	var nilProof *Proof
	if nilProof.Verify(X, nil) {
		t.Fatal("nil proof verified")
	}
}

func TestProofJSON(t *testing.T) {
	curve := curves.Secp224k1()
	x, _ := curve.NewScalar(rand.Reader)
	X, _ := curve.ScalarBaseMult(x)
	proof, err := Prove(rand.Reader, x, X, []byte("json"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(proof)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var got Proof
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !got.Verify(X, []byte("json")) {
		t.Fatal("decoded proof does not verify")
	}

	if err := json.Unmarshal([]byte(`{"r":null,"s":"12"}`), &got); err == nil {
		t.Fatal("accepted proof without commitment")
	}
	if err := json.Unmarshal([]byte(`{"s":"zz"}`), &got); err == nil {
		t.Fatal("accepted malformed response")
	}
}
