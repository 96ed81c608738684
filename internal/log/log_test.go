package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleInt      = 3
	sampleBytes    = []byte("123")
	sampleList     = []int64{10, 0, -10}
	sampleDuration = time.Second

	errSample = errors.New("some error")
)

func doLogs() {
	Infof("encrypted %d chunks for key %x", sampleInt, sampleBytes)
	Debugw("encrypting chunk", "index", 1, "curve", "secp256k1")
	Errorf("cannot write ciphertext file: %v", errSample)
	Warnw("various types",
		"list", sampleList,
		"duration", sampleDuration,
	)
	Error(errSample)
}

func captureLogs(t *testing.T, level string, errOut io.Writer) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	logTestWriter = buf
	Init(level, logTestWriterName, errOut)
	t.Cleanup(func() {
		Init(LogLevelInfo, "stderr", nil)
		logTestWriter = nil
	})
	return buf
}

func lines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(l), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestLevels(t *testing.T) {
	buf := captureLogs(t, LogLevelDebug, nil)
	assert.Equal(t, LogLevelDebug, Level())
	doLogs()

	entries := lines(buf)
	require.Len(t, entries, 5)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "encrypted 3 chunks for key 313233", entries[0]["message"])
	assert.Equal(t, "debug", entries[1]["level"])
	assert.Equal(t, "secp256k1", entries[1]["curve"])
	assert.EqualValues(t, 1, entries[1]["index"])
	assert.Equal(t, "some error", entries[4]["error"])

	buf.Reset()
	Init(LogLevelWarn, logTestWriterName, nil)
	assert.Equal(t, LogLevelWarn, Level())
	doLogs()
	assert.Len(t, lines(buf), 3)
}

func TestErrorOutput(t *testing.T) {
	errBuf := new(bytes.Buffer)
	buf := captureLogs(t, LogLevelDebug, errBuf)
	doLogs()

	assert.Len(t, lines(buf), 5)
	entries := lines(errBuf)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Contains(t, []any{"warn", "error"}, e["level"])
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	Init(LogLevelInfo, path, nil)
	t.Cleanup(func() { Init(LogLevelInfo, "stderr", nil) })
	Infow("to file", "k", "v")
	Init(LogLevelInfo, "stderr", nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}

func TestInvalidLevel(t *testing.T) {
	assert.Panics(t, func() { Init("loud", "stderr", nil) })
}

func TestCheckInvalidChars(t *testing.T) {
	t.Cleanup(func() { panicOnInvalidChars = false })

	v := []byte{'h', 'e', 'l', 'l', 'o', 0xff, 'w', 'o', 'r', 'l', 'd'}
	panicOnInvalidChars = false
	captureLogs(t, LogLevelDebug, nil)
	assert.NotPanics(t, func() { Debugf("%s", v) })

	panicOnInvalidChars = true
	assert.Panics(t, func() { Debugf("%s", v) })
}

func BenchmarkLogger(b *testing.B) {
	logTestWriter = io.Discard
	Init(LogLevelDebug, logTestWriterName, nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		doLogs()
	}
}
