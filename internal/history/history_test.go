package history

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/tickerwatch/internal/store"
)

func quietLogger() *log.Logger {
	return &log.Logger{Writer: log.IOWriter{Writer: io.Discard}}
}

func TestLedger_MarkAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_filings.txt")

	l, err := Open(store.NewFile(path), quietLogger())
	require.NoError(t, err)
	assert.False(t, l.IsProcessed("0001234567-25-000001"))

	require.NoError(t, l.MarkProcessed("0001234567-25-000001"))
	assert.True(t, l.IsProcessed("0001234567-25-000001"))

	// A new process reading the same file sees the ID.
	reopened, err := Open(store.NewFile(path), quietLogger())
	require.NoError(t, err)
	assert.True(t, reopened.IsProcessed("0001234567-25-000001"))
	assert.False(t, reopened.IsProcessed("0001234567-25-000002"))
	assert.Equal(t, 1, reopened.Len())
}

func TestLedger_LoadsExistingOnce(t *testing.T) {
	mem := store.NewMemory(time.Now(), "A", "B")

	l, err := Open(mem, quietLogger())
	require.NoError(t, err)

	// Writes that bypass the ledger are not observed after Open.
	require.NoError(t, mem.Append("C"))
	assert.True(t, l.IsProcessed("A"))
	assert.False(t, l.IsProcessed("C"))
}

func TestLedger_AppendsImmediately(t *testing.T) {
	mem := store.NewMemory(time.Now())
	l, err := Open(mem, quietLogger())
	require.NoError(t, err)

	require.NoError(t, l.MarkProcessed("X"))

	lines, err := mem.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, lines)
}

type failingStore struct {
	store.Memory
	readErr   error
	appendErr error
}

func (f *failingStore) ReadAll() ([]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Memory.ReadAll()
}

func (f *failingStore) Append(line string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.Memory.Append(line)
}

func TestLedger_Errors(t *testing.T) {
	boom := errors.New("disk full")

	_, err := Open(&failingStore{readErr: boom}, quietLogger())
	require.ErrorIs(t, err, boom)

	l, err := Open(&failingStore{appendErr: boom}, quietLogger())
	require.NoError(t, err)
	err = l.MarkProcessed("Y")
	require.ErrorIs(t, err, boom)
	assert.False(t, l.IsProcessed("Y"), "a failed append must not mark the filing")
}
