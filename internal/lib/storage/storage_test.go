package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
)

func TestFSStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.pdf"), []byte("%PDF-1.7 test"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	store := NewFSStore(dir)
	ctx := context.Background()

	obj, err := store.Open(ctx, "guide.pdf")
	require.NoError(t, err)
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 test", string(data))
	assert.Equal(t, int64(len(data)), obj.Size)

	for _, key := range []string{"missing.pdf", "../guide.pdf", "/etc/passwd", "nested"} {
		_, err := store.Open(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestNew(t *testing.T) {
	store, err := New(context.Background(), config.AssetsConfig{Driver: DriverFS, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, store)

	store, err = New(context.Background(), config.AssetsConfig{
		Driver:            DriverS3,
		S3Bucket:          "lead-magnets",
		S3Region:          "us-east-1",
		S3Endpoint:        "http://localhost:9000",
		S3AccessKeyID:     "minio",
		S3SecretAccessKey: "minio-secret",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)

	_, err = New(context.Background(), config.AssetsConfig{Driver: "ftp"})
	assert.Error(t, err)
}
