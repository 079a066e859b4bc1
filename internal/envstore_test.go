package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvStoreReadMissingFile(t *testing.T) {
	store := NewEnvStore(filepath.Join(t.TempDir(), ".env"))

	values, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestEnvStoreSetKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "OUTPUT_DIR=media\nMAX_COMMENTS=50\nYOUTUBE_URL=https://www.youtube.com/watch?v=old\n")
	store := NewEnvStore(path)

	require.NoError(t, store.Set(EnvYouTubeURL, "https://www.youtube.com/watch?v=new"))

	values, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"OUTPUT_DIR":   "media",
		"MAX_COMMENTS": "50",
		"YOUTUBE_URL":  "https://www.youtube.com/watch?v=new",
	}, values)
}

func TestEnvStoreSetCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	store := NewEnvStore(path)

	require.NoError(t, store.Set(EnvYouTubeURL, "https://www.youtube.com/watch?v=abc"))

	assert.FileExists(t, path)
	values, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", values[EnvYouTubeURL])
}

func TestNewEnvStoreDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultEnvFile, NewEnvStore("").Path())
}
