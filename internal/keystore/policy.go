package keystore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smallyu/go-ecc-elgamal/internal/log"
)

// Policy decides what happens to the files once a run is over.
type Policy int

const (
	// KeepAll leaves every file in place.
	KeepAll Policy = iota + 1
	// MoveAll moves every file into a subdirectory.
	MoveAll
	// CopyAllKeepKeys copies every file into a subdirectory, then removes
	// the ciphertext and plaintext from the store directory.
	CopyAllKeepKeys
	// KeepKeysOnly removes the ciphertext and plaintext.
	KeepKeysOnly
	// DeleteAll removes every file.
	DeleteAll
)

var ErrSubdirRequired = errors.New("keystore: policy needs a subdirectory name")

func (p Policy) String() string {
	switch p {
	case KeepAll:
		return "keep-all"
	case MoveAll:
		return "move-all"
	case CopyAllKeepKeys:
		return "copy-all-keep-keys"
	case KeepKeysOnly:
		return "keep-keys-only"
	case DeleteAll:
		return "delete-all"
	}
	return "policy(" + strconv.Itoa(int(p)) + ")"
}

// NeedsSubdir reports whether Apply needs a subdirectory for p.
func (p Policy) NeedsSubdir() bool {
	return p == MoveAll || p == CopyAllKeepKeys
}

// ParsePolicy accepts a menu number (1-5) or a policy name. Anything else
// is reported as not ok.
func ParsePolicy(s string) (Policy, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		p := Policy(n)
		return p, p >= KeepAll && p <= DeleteAll
	}
	for p := KeepAll; p <= DeleteAll; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return KeepAll, false
}

func keyFiles() []string {
	return []string{PublicKeyFile, PrivateKeyFile, GeneratorFile}
}

func runFiles() []string {
	return []string{CiphertextFile, CiphertextCBORFile, PlaintextFile}
}

// Apply carries out the policy. sub is a directory name relative to the
// store directory, used by MoveAll and CopyAllKeepKeys. Files that do not
// exist are skipped.
func (s *Store) Apply(p Policy, sub string) error {
	all := append(keyFiles(), runFiles()...)

	switch p {
	case KeepAll:
	case MoveAll, CopyAllKeepKeys:
		if strings.TrimSpace(sub) == "" {
			return ErrSubdirRequired
		}
		dst := filepath.Join(s.dir, strings.TrimSpace(sub))
		if _, err := MkdirIfMissing(dst); err != nil {
			return err
		}
		for _, name := range all {
			var err error
			if p == MoveAll {
				err = moveFile(s.path(name), filepath.Join(dst, name))
			} else {
				err = copyFile(s.path(name), filepath.Join(dst, name))
			}
			if err != nil {
				return err
			}
		}
		if p == CopyAllKeepKeys {
			if err := s.remove(runFiles()); err != nil {
				return err
			}
		}
	case KeepKeysOnly:
		if err := s.remove(runFiles()); err != nil {
			return err
		}
	case DeleteAll:
		if err := s.remove(all); err != nil {
			return err
		}
	default:
		return fmt.Errorf("keystore: unknown policy %d", int(p))
	}

	log.Infow("retention policy applied", "dir", s.dir, "policy", p.String(), "sub", sub)
	return nil
}

func (s *Store) remove(names []string) error {
	for _, name := range names {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		// cross-device rename
		if err := copyFile(src, dst); err != nil {
			return err
		}
		return os.Remove(src)
	}
	log.Debugw("file moved", "from", src, "to", dst)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	log.Debugw("file copied", "from", src, "to", dst)
	return out.Close()
}

// MkdirIfMissing creates path and its parents. It reports whether the
// directory had to be created.
func MkdirIfMissing(path string) (bool, error) {
	path = strings.TrimRight(strings.TrimSpace(path), "/")
	if path == "" {
		path = "."
	}
	if fi, err := os.Stat(path); err == nil {
		if !fi.IsDir() {
			return false, fmt.Errorf("keystore: %s exists and is not a directory", path)
		}
		return false, nil
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return false, err
	}
	log.Debugw("directory created", "path", path)
	return true, nil
}
