package downloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
}

func TestCleanupPartials(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "Artist", "Artist - Song.mp3.part"), 48*time.Hour)
	touch(t, filepath.Join(root, "Artist", "Artist - Song.mp3.ytdl"), 48*time.Hour)
	touch(t, filepath.Join(root, "Artist", "Artist - Song.webp"), 48*time.Hour)
	touch(t, filepath.Join(root, "Artist", "Artist - Song.mp3"), 48*time.Hour)
	touch(t, filepath.Join(root, "Other", "fresh.part"), time.Minute)

	removed, err := CleanupPartials(root, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	assert.FileExists(t, filepath.Join(root, "Artist", "Artist - Song.mp3"))
	assert.FileExists(t, filepath.Join(root, "Other", "fresh.part"))
	assert.NoFileExists(t, filepath.Join(root, "Artist", "Artist - Song.mp3.part"))
}
