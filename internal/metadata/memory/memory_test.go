package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragh/internal/domain"
)

func TestStorePutGetOverwrite(t *testing.T) {
	s := NewStore()
	defer s.Close()

	meta := domain.PassageMeta{DocID: "d1", Source: "a.txt", StartChar: 0, EndChar: 10, Text: "first ten.", Preview: "first ten."}
	require.NoError(t, s.Put("d1_c0", meta))

	got, err := s.Get("d1_c0")
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	meta.Text = "rewritten."
	require.NoError(t, s.Put("d1_c0", meta))
	got, err = s.Get("d1_c0")
	require.NoError(t, err)
	assert.Equal(t, "rewritten.", got.Text)
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreGetManyOmitsMissing(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put("a", domain.PassageMeta{DocID: "d", Text: "x"}))
	require.NoError(t, s.Put("b", domain.PassageMeta{DocID: "d", Text: "y"}))

	got, err := s.GetMany([]string{"a", "missing", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "a")
	assert.Contains(t, got, "b")
	assert.NotContains(t, got, "missing")
}
