// Package keystore persists key material, ciphertexts and decrypted text as
// line oriented files in a single directory.
//
// File layout:
//
//	Public_key.txt      x, y and curve name, one per line
//	Private_key.txt     decimal private scalar d
//	Generator.txt       decimal auxiliary scalar g, then one ephemeral k per line
//	Ciphertext.txt      per chunk: U then V, each as x, y, curve name lines
//	Ciphertext.cbor     the same ciphertexts as a CBOR array
//	decrypted_Text.txt  the recovered plaintext
package keystore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/elgamal"
	"github.com/smallyu/go-ecc-elgamal/internal/log"
)

const (
	PublicKeyFile      = "Public_key.txt"
	PrivateKeyFile     = "Private_key.txt"
	GeneratorFile      = "Generator.txt"
	CiphertextFile     = "Ciphertext.txt"
	CiphertextCBORFile = "Ciphertext.cbor"
	PlaintextFile      = "decrypted_Text.txt"

	infinity = "inf"
)

// Format selects the ciphertext file encoding.
type Format string

const (
	FormatText Format = "text"
	FormatCBOR Format = "cbor"
)

var (
	ErrNoKeys        = errors.New("keystore: key files missing or empty")
	ErrMalformedFile = errors.New("keystore: malformed file")
	ErrUnknownFormat = errors.New("keystore: unknown ciphertext format")
	ErrKeyMismatch   = errors.New("keystore: public key does not match private key")
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatCBOR:
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Store reads and writes the files of one directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if _, err := MkdirIfMissing(dir); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// HasKeys reports whether both key files exist and are not empty.
func (s *Store) HasKeys() bool {
	for _, name := range []string{PublicKeyFile, PrivateKeyFile} {
		fi, err := os.Stat(s.path(name))
		if err != nil || fi.Size() == 0 {
			return false
		}
	}
	return true
}

// SaveKeyPair writes the public key, the private key and the auxiliary
// generator, replacing any previous key files. Recorded ephemeral scalars
// are dropped with the old Generator.txt.
func (s *Store) SaveKeyPair(kp *elgamal.KeyPair) error {
	var pub bytes.Buffer
	writePoint(&pub, kp.Public)
	if err := s.writeFile(PublicKeyFile, pub.Bytes()); err != nil {
		return err
	}
	if err := s.writeFile(PrivateKeyFile, []byte(kp.Private.String())); err != nil {
		return err
	}
	gen := ""
	if kp.Generator != nil {
		gen = kp.Generator.String() + "\n"
	}
	if err := s.writeFile(GeneratorFile, []byte(gen)); err != nil {
		return err
	}
	log.Infow("key pair saved", "dir", s.dir, "curve", kp.Curve.Params().Name)
	return nil
}

// LoadPublicKey reads Public_key.txt and checks curve membership.
func (s *Store) LoadPublicKey() (*curves.Point, error) {
	lines, err := s.readLines(PublicKeyFile)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoKeys, PublicKeyFile)
	}
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: %s has %d lines", ErrMalformedFile, PublicKeyFile, len(lines))
	}
	p, err := parsePoint(lines[:3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", PublicKeyFile, err)
	}
	return p, nil
}

// LoadPrivateKey reads Private_key.txt.
func (s *Store) LoadPrivateKey() (*big.Int, error) {
	lines, err := s.readLines(PrivateKeyFile)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoKeys
	}
	d, err := parseInt(lines[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", PrivateKeyFile, err)
	}
	return d, nil
}

// LoadGenerator returns the auxiliary scalar g and the ephemeral scalars
// appended after it.
func (s *Store) LoadGenerator() (*big.Int, []*big.Int, error) {
	lines, err := s.readLines(GeneratorFile)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, nil
	}
	g, err := parseInt(lines[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", GeneratorFile, err)
	}
	ks := make([]*big.Int, 0, len(lines)-1)
	for _, l := range lines[1:] {
		k, err := parseInt(l)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", GeneratorFile, err)
		}
		ks = append(ks, k)
	}
	return g, ks, nil
}

// LoadKeyPair rebuilds the key pair from the three key files. The curve is
// taken from the public key file.
func (s *Store) LoadKeyPair() (*elgamal.KeyPair, error) {
	pub, err := s.LoadPublicKey()
	if err != nil {
		return nil, err
	}
	d, err := s.LoadPrivateKey()
	if err != nil {
		return nil, err
	}
	g, _, err := s.LoadGenerator()
	if err != nil && !errors.Is(err, ErrNoKeys) {
		return nil, err
	}
	kp, err := elgamal.NewKeyPair(pub.Curve(), d, g)
	if err != nil {
		return nil, err
	}
	if !kp.Public.Equal(pub) {
		return nil, ErrKeyMismatch
	}
	return kp, nil
}

// AppendEphemeral records the ephemeral scalars used by an encryption.
func (s *Store) AppendEphemeral(ks ...*big.Int) error {
	f, err := os.OpenFile(s.path(GeneratorFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, k := range ks {
		if k == nil {
			continue
		}
		fmt.Fprintln(w, k.String())
	}
	return w.Flush()
}

// SaveCiphertexts writes the ciphertexts in the given format, replacing the
// previous ciphertext file.
func (s *Store) SaveCiphertexts(cts []*elgamal.Ciphertext, format Format) error {
	switch format {
	case FormatText:
		var buf bytes.Buffer
		for i, ct := range cts {
			if ct == nil || ct.U == nil || ct.V == nil {
				return fmt.Errorf("keystore: ciphertext %d is incomplete", i)
			}
			writePoint(&buf, ct.U)
			writePoint(&buf, ct.V)
		}
		if err := s.writeFile(CiphertextFile, buf.Bytes()); err != nil {
			return err
		}
	case FormatCBOR:
		data, err := cbor.Marshal(cts)
		if err != nil {
			return fmt.Errorf("failed to marshal ciphertexts: %w", err)
		}
		if err := s.writeFile(CiphertextCBORFile, data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	log.Infow("ciphertexts saved", "dir", s.dir, "chunks", len(cts), "format", string(format))
	return nil
}

// LoadCiphertexts reads the ciphertext file of the given format. The text
// format does not carry ephemeral scalars.
func (s *Store) LoadCiphertexts(format Format) ([]*elgamal.Ciphertext, error) {
	switch format {
	case FormatText:
		lines, err := s.readLines(CiphertextFile)
		if err != nil {
			return nil, err
		}
		if len(lines)%6 != 0 {
			return nil, fmt.Errorf("%w: %s has %d lines, want a multiple of 6", ErrMalformedFile, CiphertextFile, len(lines))
		}
		cts := make([]*elgamal.Ciphertext, 0, len(lines)/6)
		for i := 0; i < len(lines); i += 6 {
			u, err := parsePoint(lines[i : i+3])
			if err != nil {
				return nil, fmt.Errorf("%s chunk %d: %w", CiphertextFile, i/6, err)
			}
			v, err := parsePoint(lines[i+3 : i+6])
			if err != nil {
				return nil, fmt.Errorf("%s chunk %d: %w", CiphertextFile, i/6, err)
			}
			cts = append(cts, &elgamal.Ciphertext{U: u, V: v})
		}
		return cts, nil
	case FormatCBOR:
		data, err := os.ReadFile(s.path(CiphertextCBORFile))
		if err != nil {
			return nil, err
		}
		var cts []*elgamal.Ciphertext
		if err := cbor.Unmarshal(data, &cts); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedFile, CiphertextCBORFile, err)
		}
		return cts, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// SavePlaintext writes the decrypted message.
func (s *Store) SavePlaintext(msg []byte) error {
	if err := s.writeFile(PlaintextFile, msg); err != nil {
		return err
	}
	log.Debugw("plaintext saved", "dir", s.dir, "bytes", len(msg))
	return nil
}

// LoadPlaintext reads the decrypted message.
func (s *Store) LoadPlaintext() ([]byte, error) {
	return os.ReadFile(s.path(PlaintextFile))
}

func (s *Store) writeFile(name string, data []byte) error {
	if err := os.WriteFile(s.path(name), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// readLines returns the trimmed non-empty lines of a file. A missing key
// file is reported as ErrNoKeys.
func (s *Store) readLines(name string) ([]string, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && isKeyFile(name) {
			return nil, fmt.Errorf("%w: %s", ErrNoKeys, name)
		}
		return nil, err
	}
	defer f.Close()
	return scanLines(f)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, sc.Err()
}

func isKeyFile(name string) bool {
	return name == PublicKeyFile || name == PrivateKeyFile || name == GeneratorFile
}

func writePoint(w io.Writer, p *curves.Point) {
	name := p.Curve().Params().Name
	if p.IsInfinity() {
		fmt.Fprintf(w, "%s\n%s\n%s\n", infinity, infinity, name)
		return
	}
	fmt.Fprintf(w, "%s\n%s\n%s\n", p.X(), p.Y(), name)
}

func parsePoint(lines []string) (*curves.Point, error) {
	curve, err := curves.New(lines[2])
	if err != nil {
		return nil, err
	}
	if lines[0] == infinity && lines[1] == infinity {
		return curve.Infinity(), nil
	}
	x, err := parseInt(lines[0])
	if err != nil {
		return nil, err
	}
	y, err := parseInt(lines[1])
	if err != nil {
		return nil, err
	}
	return curve.NewPoint(x, y)
}

func parseInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrMalformedFile, s)
	}
	return v, nil
}
