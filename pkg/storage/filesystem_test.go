package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.Put("cls_001/mat_1/notes.txt", strings.NewReader("hello"), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	f, err := store.Open("cls_001/mat_1/notes.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete("cls_001/mat_1/notes.txt"))
	_, err = store.Open("cls_001/mat_1/notes.txt")
	assert.Error(t, err)
}

func TestLocalStorageEnforcesLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put("big.bin", strings.NewReader("0123456789"), 4)
	require.ErrorIs(t, err, ErrTooLarge)
	_, err = store.Open("big.bin")
	assert.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape.txt", "/etc/passwd", "", "a/../../b"} {
		_, err := store.Put(key, strings.NewReader("x"), 0)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Week_1_slides.pdf", SanitizeFilename("../../Week 1 slides.pdf"))
	assert.Equal(t, "report.csv", SanitizeFilename(`C:\tmp\report.csv`))
	assert.Equal(t, "upload", SanitizeFilename("..."))
}
