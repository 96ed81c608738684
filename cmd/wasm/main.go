//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"syscall/js"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/elgamal"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/zk/schnorr"
	"github.com/smallyu/go-ecc-elgamal/internal/log"
	"github.com/smallyu/go-ecc-elgamal/pkg/ecelgamal"
)

func main() {
	c := make(chan struct{})

	log.Init(log.LogLevelInfo, "stdout", nil)
	log.Info("Go EC-ElGamal WASM initialized")

	// Expose Go functions to JS
	js.Global().Set("GoECElGamal", map[string]interface{}{
		"GenerateKeyPair": js.FuncOf(GenerateKeyPair),
		"Encrypt":         js.FuncOf(Encrypt),
		"Decrypt":         js.FuncOf(Decrypt),
		"ProveKey":        js.FuncOf(ProveKey),
		"VerifyKey":       js.FuncOf(VerifyKey),
		"Curves":          js.FuncOf(Curves),
	})

	<-c
}

// keyPairDTO carries scalars as decimal strings; JS numbers would lose
// precision.
type keyPairDTO struct {
	Curve     string        `json:"curve"`
	Private   string        `json:"private,omitempty"`
	Generator string        `json:"generator,omitempty"`
	Public    *curves.Point `json:"public"`
}

// GenerateKeyPair creates a key pair.
// Arguments:
// 0: curve name (optional, defaults to secp256k1)
// Returns:
// JSON key pair or "error: ..."
func GenerateKeyPair(this js.Value, args []js.Value) interface{} {
	curve := curves.DefaultCurve
	if len(args) > 0 && args[0].Type() == js.TypeString {
		curve = args[0].String()
	}
	s, err := ecelgamal.NewSession(ecelgamal.DefaultParameters(curve))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	kp, err := s.GenerateKeyPair()
	if err != nil {
		return fmt.Sprintf("error: key generation failed: %v", err)
	}
	return marshal(&keyPairDTO{
		Curve:     curve,
		Private:   kp.Private.String(),
		Generator: kp.Generator.String(),
		Public:    kp.Public,
	})
}

// Encrypt encrypts a UTF-8 message.
// Arguments:
// 0: JSON public key (a point, or a key pair as returned by GenerateKeyPair)
// 1: message
// Returns:
// JSON array of ciphertexts or "error: ..."
func Encrypt(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (publicKeyJSON, message)"
	}
	pub, err := parsePublicKey(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: invalid public key: %v", err)
	}
	s, err := ecelgamal.NewSession(ecelgamal.DefaultParameters(pub.Curve().Params().Name))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	cts, err := s.EncryptMessage(context.Background(), pub, []byte(args[1].String()))
	if err != nil {
		return fmt.Sprintf("error: encryption failed: %v", err)
	}
	return marshal(cts)
}

// Decrypt decrypts ciphertexts produced by Encrypt.
// Arguments:
// 0: JSON key pair as returned by GenerateKeyPair
// 1: JSON array of ciphertexts
// Returns:
// message or "error: ..."
func Decrypt(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (keyPairJSON, ciphertextsJSON)"
	}
	var key keyPairDTO
	if err := json.Unmarshal([]byte(args[0].String()), &key); err != nil {
		return fmt.Sprintf("error: invalid key json: %v", err)
	}
	d, ok := new(big.Int).SetString(key.Private, 10)
	if !ok {
		return "error: invalid private key"
	}
	var cts []*elgamal.Ciphertext
	if err := json.Unmarshal([]byte(args[1].String()), &cts); err != nil {
		return fmt.Sprintf("error: invalid ciphertext json: %v", err)
	}
	s, err := ecelgamal.NewSession(ecelgamal.DefaultParameters(key.Curve))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	msg, err := s.DecryptMessage(context.Background(), d, cts)
	if err != nil {
		return fmt.Sprintf("error: decryption failed: %v", err)
	}
	return string(msg)
}

// ProveKey proves ownership of a key pair.
// Arguments:
// 0: JSON key pair as returned by GenerateKeyPair
// 1: label chosen by the verifier
// Returns:
// JSON proof or "error: ..."
func ProveKey(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (keyPairJSON, label)"
	}
	var key keyPairDTO
	if err := json.Unmarshal([]byte(args[0].String()), &key); err != nil {
		return fmt.Sprintf("error: invalid key json: %v", err)
	}
	d, ok := new(big.Int).SetString(key.Private, 10)
	if !ok {
		return "error: invalid private key"
	}
	s, err := ecelgamal.NewSession(ecelgamal.DefaultParameters(key.Curve))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	kp, err := elgamal.NewKeyPair(s.Curve(), d, nil)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	proof, err := s.ProveKey(kp, []byte(args[1].String()))
	if err != nil {
		return fmt.Sprintf("error: proof failed: %v", err)
	}
	return marshal(proof)
}

// VerifyKey checks a key ownership proof.
// Arguments:
// 0: JSON public key
// 1: JSON proof as returned by ProveKey
// 2: label
// Returns:
// true, false, or "error: ..."
func VerifyKey(this js.Value, args []js.Value) interface{} {
	if len(args) != 3 {
		return "error: expected 3 arguments (publicKeyJSON, proofJSON, label)"
	}
	pub, err := parsePublicKey(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: invalid public key: %v", err)
	}
	var proof schnorr.Proof
	if err := json.Unmarshal([]byte(args[1].String()), &proof); err != nil {
		return fmt.Sprintf("error: invalid proof json: %v", err)
	}
	s, err := ecelgamal.NewSession(ecelgamal.DefaultParameters(pub.Curve().Params().Name))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return s.VerifyKey(pub, &proof, []byte(args[2].String())) == nil
}

// Curves lists the supported curve names as a JSON array.
func Curves(this js.Value, args []js.Value) interface{} {
	return marshal(curves.Names())
}

func parsePublicKey(data string) (*curves.Point, error) {
	var key keyPairDTO
	if err := json.Unmarshal([]byte(data), &key); err == nil && key.Public != nil {
		return key.Public, nil
	}
	p := new(curves.Point)
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, err
	}
	return p, nil
}

func marshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: marshal failed: %v", err)
	}
	return string(b)
}
