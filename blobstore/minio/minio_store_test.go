package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dupgraph/blobstore"
)

func TestStore_KeyMapping(t *testing.T) {
	s := NewStore(nil, "bucket", "runs/1")
	assert.Equal(t, "runs/1/cc.bin", s.key("cc.bin"))
	assert.Equal(t, "cc.bin", s.name("runs/1/cc.bin"))

	bare := NewStore(nil, "bucket", "")
	assert.Equal(t, "cc.bin", bare.key("cc.bin"))
	assert.Equal(t, "dir/cc.bin", bare.name("dir/cc.bin"))
}

func TestBlob_Clamp(t *testing.T) {
	b := &blob{size: 10}

	start, end, ok := b.clamp(8, 5)
	require.True(t, ok)
	assert.Equal(t, int64(8), start)
	assert.Equal(t, int64(9), end)

	_, _, ok = b.clamp(10, 1)
	assert.False(t, ok)
	_, _, ok = b.clamp(0, 0)
	assert.False(t, ok)

	empty := &blob{size: 0}
	r, err := empty.ReadRange(context.Background(), 0, 10)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

// TestStore_Integration runs against a live server when
// DUPGRAPH_MINIO_ENDPOINT is set.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("DUPGRAPH_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("DUPGRAPH_MINIO_ENDPOINT not set")
	}
	ctx := context.Background()

	store, err := New(endpoint, "dupgraph-test", "it", Options{
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	exists, err := store.client.BucketExists(ctx, store.bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "a.bin", data))

	n, err := blobstore.WriteFunc(ctx, store, "b.bin", func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)

	b, err := store.Open(ctx, "b.bin")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), b.Size())

	buf := make([]byte, 5)
	_, err = b.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "a.bin")
	assert.Contains(t, names, "b.bin")

	require.NoError(t, store.Delete(ctx, "a.bin"))
	require.NoError(t, store.Delete(ctx, "b.bin"))
	_, err = store.Open(ctx, "a.bin")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
