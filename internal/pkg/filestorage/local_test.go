package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_StoreURLDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	ref, err := store.Store(ctx, "profile_pics", &Upload{Filename: "Me.PNG", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "profile_pics/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	assert.Equal(t, "http://localhost:8080/uploads/"+ref, store.URLFor(ref))
	assert.Equal(t, "", store.URLFor(""))

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStorage_RejectsEscapingReferences(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	for _, ref := range []string{"", "/", "../secret.txt", "profile_pics/../../etc/passwd"} {
		assert.ErrorIs(t, store.Delete(context.Background(), ref), ErrInvalidReference, ref)
	}
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(&Upload{Filename: "a.JPG"}))
	assert.False(t, IsImage(&Upload{Filename: "a.exe"}))
}
