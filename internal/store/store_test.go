package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	cfg := &config.Config{}
	cfg.Store.DataDir = t.TempDir()
	return NewFileStore(cfg)
}

func writeTemp(t *testing.T, name string, body []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, body, 0o644))
	return path
}

func TestFileStore_PutAndResolve(t *testing.T) {
	s := newTestStore(t)
	src := writeTemp(t, "lecture.wav", []byte("pcm bytes"))

	record, err := s.Put(src)
	require.NoError(t, err)
	assert.Equal(t, "lecture.wav", record.FileName)
	assert.Len(t, record.Hash, 64)

	resolved, err := s.Resolve(record)
	require.NoError(t, err)
	body, err := os.ReadFile(resolved)
	require.NoError(t, err)
	assert.Equal(t, []byte("pcm bytes"), body)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_DedupIdenticalBytes(t *testing.T) {
	s := newTestStore(t)
	first := writeTemp(t, "a.srt", []byte("same bytes"))
	second := writeTemp(t, "b.srt", []byte("same bytes"))

	r1, err := s.Put(first)
	require.NoError(t, err)
	r2, err := s.Put(second)
	require.NoError(t, err)

	assert.Equal(t, r1.Hash, r2.Hash)
	assert.Equal(t, r1.PrivatePath, r2.PrivatePath)

	entries, err := os.ReadDir(s.dataDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ResolveForeignHostPath(t *testing.T) {
	s := newTestStore(t)
	record := &models.FileRecord{
		PrivatePath: "/mnt/worker03/data/abc123.vtt",
		Hash:        "abc123",
	}
	resolved, err := s.Resolve(record)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.dataDir, "abc123.vtt"), resolved)
}

func TestFileStore_ResolveRejectsUnanchoredPath(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Resolve(&models.FileRecord{PrivatePath: "/tmp/stray.bin"})
	assert.Error(t, err)
}

func TestFileStore_Delete(t *testing.T) {
	s := newTestStore(t)
	src := writeTemp(t, "scene.jpg", []byte("jpeg"))
	record, err := s.Put(src)
	require.NoError(t, err)

	require.NoError(t, s.Delete(record))
	resolved, err := s.Resolve(record)
	require.NoError(t, err)
	_, err = os.Stat(resolved)
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(record))
}
