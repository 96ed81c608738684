package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allFiles = []string{PublicKeyFile, PrivateKeyFile, GeneratorFile, CiphertextFile, PlaintextFile}

func populate(t *testing.T) *Store {
	t.Helper()
	s := newStore(t)
	for _, name := range allFiles {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), name), []byte(name), 0o600))
	}
	return s
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

func TestApplyPolicies(t *testing.T) {
	keys := []string{PublicKeyFile, PrivateKeyFile, GeneratorFile}
	run := []string{CiphertextFile, PlaintextFile}

	tests := []struct {
		name     string
		policy   Policy
		sub      string
		inDir    []string
		notInDir []string
		inSub    []string
	}{
		{"keep all", KeepAll, "", allFiles, nil, nil},
		{"move all", MoveAll, "archive", nil, allFiles, allFiles},
		{"copy all keep keys", CopyAllKeepKeys, "archive", keys, run, allFiles},
		{"keep keys only", KeepKeysOnly, "", keys, run, nil},
		{"delete all", DeleteAll, "", nil, allFiles, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := populate(t)
			require.NoError(t, s.Apply(tt.policy, tt.sub))

			for _, name := range tt.inDir {
				assert.True(t, exists(s.Dir(), name), name)
			}
			for _, name := range tt.notInDir {
				assert.False(t, exists(s.Dir(), name), name)
			}
			for _, name := range tt.inSub {
				sub := filepath.Join(s.Dir(), tt.sub)
				assert.True(t, exists(sub, name), name)
				data, err := os.ReadFile(filepath.Join(sub, name))
				require.NoError(t, err)
				assert.Equal(t, name, string(data))
			}
		})
	}
}

func TestApplyErrors(t *testing.T) {
	s := populate(t)
	assert.ErrorIs(t, s.Apply(MoveAll, " "), ErrSubdirRequired)
	assert.ErrorIs(t, s.Apply(CopyAllKeepKeys, ""), ErrSubdirRequired)
	assert.Error(t, s.Apply(Policy(9), ""))

	// missing files are skipped
	empty := newStore(t)
	assert.NoError(t, empty.Apply(DeleteAll, ""))
	assert.NoError(t, empty.Apply(MoveAll, "x"))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"1", KeepAll, true},
		{"2", MoveAll, true},
		{" 3\n", CopyAllKeepKeys, true},
		{"4", KeepKeysOnly, true},
		{"5", DeleteAll, true},
		{"delete-all", DeleteAll, true},
		{"Keep-Keys-Only", KeepKeysOnly, true},
		{"6", Policy(6), false},
		{"maybe", KeepAll, false},
	}
	for _, tt := range tests {
		got, ok := ParsePolicy(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
	assert.True(t, MoveAll.NeedsSubdir())
	assert.False(t, KeepKeysOnly.NeedsSubdir())
	assert.Equal(t, "policy(9)", Policy(9).String())
}

func TestMkdirIfMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	created, err := MkdirIfMissing(dir + "/")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = MkdirIfMissing(dir)
	require.NoError(t, err)
	assert.False(t, created)

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = MkdirIfMissing(file)
	assert.Error(t, err)
}
