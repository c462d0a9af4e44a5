package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragh/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltPutGetOverwrite(t *testing.T) {
	s := openTestStore(t)

	meta := domain.PassageMeta{DocID: "d1", Source: "a.txt", StartChar: 5, EndChar: 25, Text: "twenty characters!!", Preview: "twenty"}
	require.NoError(t, s.Put("d1_c0", meta))

	got, err := s.Get("d1_c0")
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	meta.Preview = "changed"
	require.NoError(t, s.Put("d1_c0", meta))
	got, err = s.Get("d1_c0")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Preview)
}

func TestBoltGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoltGetManyOmitsMissing(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("a", domain.PassageMeta{DocID: "d", Text: "x"}))
	require.NoError(t, s.Put("b", domain.PassageMeta{DocID: "d", Text: "y"}))

	got, err := s.GetMany([]string{"a", "missing", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotContains(t, got, "missing")
}

// The store must restore the same logical state after reopen: every id
// written before close resolves after.
func TestBoltReopenRestoresState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("p1", domain.PassageMeta{DocID: "d1", Text: "survives restarts"}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "survives restarts", got.Text)
}
