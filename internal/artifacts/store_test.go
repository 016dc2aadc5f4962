package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	videosDir := filepath.Join(root, "videos")
	tempDir := filepath.Join(root, "tmp")

	s := New(videosDir, tempDir)
	require.NoError(t, s.EnsureDirs())

	for _, dir := range []string{videosDir, tempDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// already existing dirs are fine
	require.NoError(t, s.EnsureDirs())
}

func TestMkTemp(t *testing.T) {
	s := New(t.TempDir(), t.TempDir())

	first, err := s.MkTemp("job-1")
	require.NoError(t, err)
	second, err := s.MkTemp("job-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Contains(t, filepath.Base(first), "manim_job-1_")

	info, err := os.Stat(first)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestArtifactPath(t *testing.T) {
	s := New("/data/videos", "/tmp/work")
	path := s.ArtifactPath("abc-123")
	assert.Equal(t, filepath.Join("/data/videos", "abc-123.mp4"), path)
	assert.True(t, strings.HasSuffix(path, ".mp4"))
}

func TestPublish(t *testing.T) {
	videosDir := t.TempDir()
	s := New(videosDir, t.TempDir())

	src := filepath.Join(t.TempDir(), "render.mp4")
	require.NoError(t, os.WriteFile(src, []byte("rendered video bytes"), 0o644))

	final, err := s.Publish(src, "job-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(videosDir, "job-1.mp4"), final)

	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "rendered video bytes", string(data))
}

func TestPublish_MissingSource(t *testing.T) {
	s := New(t.TempDir(), t.TempDir())

	_, err := s.Publish("/nonexistent/render.mp4", "job-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open rendered video")
}

func TestRemove(t *testing.T) {
	videosDir := t.TempDir()
	s := New(videosDir, t.TempDir())

	path := filepath.Join(videosDir, "job-1.mp4")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0o644))

	require.NoError(t, s.Remove(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing again is not an error, nor is an empty path
	require.NoError(t, s.Remove(path))
	require.NoError(t, s.Remove(""))
}
