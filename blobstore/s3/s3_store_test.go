package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dupgraph/blobstore"
)

// MockS3Client mocks the S3 API used by Store.
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func (m *MockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CreateMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.UploadPartOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CompleteMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.AbortMultipartUploadOutput)
	return out, args.Error(1)
}

var _ Client = (*MockS3Client)(nil)

func headKey(bucket, key string) any {
	return mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Bucket) == bucket && aws.ToString(in.Key) == key
	})
}

func getRange(key, rng string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == key && aws.ToString(in.Range) == rng
	})
}

func body(s string) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(s))}
}

func TestStore_Open(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "prefix")

	t.Run("NotFound", func(t *testing.T) {
		client.On("HeadObject", mock.Anything, headKey("bucket", "prefix/missing.bin")).
			Return(nil, &types.NotFound{}).Once()

		_, err := store.Open(context.Background(), "missing.bin")
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("NoSuchKey", func(t *testing.T) {
		client.On("HeadObject", mock.Anything, headKey("bucket", "prefix/gone.bin")).
			Return(nil, &types.NoSuchKey{}).Once()

		_, err := store.Open(context.Background(), "gone.bin")
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("Failure", func(t *testing.T) {
		boom := errors.New("access denied")
		client.On("HeadObject", mock.Anything, headKey("bucket", "prefix/denied.bin")).
			Return(nil, boom).Once()

		_, err := store.Open(context.Background(), "denied.bin")
		require.ErrorIs(t, err, boom)
	})

	t.Run("Success", func(t *testing.T) {
		client.On("HeadObject", mock.Anything, headKey("bucket", "prefix/cc.bin")).
			Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(100)}, nil).Once()

		b, err := store.Open(context.Background(), "cc.bin")
		require.NoError(t, err)
		assert.Equal(t, int64(100), b.Size())
	})

	client.AssertExpectations(t)
}

func TestStore_Put(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "prefix")

	var got []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" && aws.ToString(in.Key) == "prefix/cc.bin" &&
			aws.ToInt64(in.ContentLength) == 10
	})).Run(func(args mock.Arguments) {
		got, _ = io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "cc.bin", []byte("0123456789")))
	assert.Equal(t, "0123456789", string(got))
	client.AssertExpectations(t)
}

func TestBlob_ReadAt(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "prefix")

	client.On("HeadObject", mock.Anything, headKey("bucket", "prefix/cc.bin")).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(10)}, nil).Once()
	client.On("GetObject", mock.Anything, getRange("prefix/cc.bin", "bytes=3-6")).Return(body("3456"), nil).Once()
	client.On("GetObject", mock.Anything, getRange("prefix/cc.bin", "bytes=8-9")).Return(body("89"), nil).Once()
	client.On("GetObject", mock.Anything, getRange("prefix/cc.bin", "bytes=5-9")).Return(body("56789"), nil).Once()

	b, err := store.Open(ctx, "cc.bin")
	require.NoError(t, err)
	require.Equal(t, int64(10), b.Size())

	buf := make([]byte, 4)
	n, err := b.ReadAt(ctx, buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "3456", string(buf))

	buf = make([]byte, 5)
	n, err = b.ReadAt(ctx, buf, 8)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, n)
	assert.Equal(t, "89", string(buf[:n]))

	// Reads past the end never reach S3.
	_, err = b.ReadAt(ctx, buf, 10)
	require.ErrorIs(t, err, io.EOF)

	r, err := b.ReadRange(ctx, 5, 100)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "56789", string(got))

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "GetObject", 3)
}

func TestBlob_ReadAtFailure(t *testing.T) {
	client := new(MockS3Client)
	b := &blob{client: client, bucket: "bucket", key: "k", size: 10}
	boom := errors.New("slow down")

	client.On("GetObject", mock.Anything, getRange("k", "bytes=0-4")).Return(nil, boom).Once()

	_, err := b.ReadAt(context.Background(), make([]byte, 5), 0)
	require.ErrorIs(t, err, boom)
	client.AssertExpectations(t)
}

func TestStore_CreateStreams(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "")

	var (
		mu  sync.Mutex
		got []byte
	)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "cmd.bin"
	})).Run(func(args mock.Arguments) {
		data, _ := io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
		mu.Lock()
		got = data
		mu.Unlock()
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	n, err := blobstore.WriteFunc(ctx, store, "cmd.bin", func(w io.Writer) error {
		for i := 0; i < 3; i++ {
			if _, err := fmt.Fprintf(w, "chunk-%d;", i); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(24), n)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "chunk-0;chunk-1;chunk-2;", string(got))
	client.AssertExpectations(t)
}

func TestStore_ListPaginates(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "runs/")

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Prefix) == "runs/" && in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
		Contents: []types.Object{
			{Key: aws.String("runs/b/cc.bin")},
			{Key: aws.String("runs/a/cmd.bin")},
		},
	}, nil).Once()
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents: []types.Object{
			{Key: aws.String("runs/a/cc.bin")},
			{Key: aws.String("runs/c/cc.bin")},
		},
	}, nil).Once()
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Prefix) == "runs/a/"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("runs/a/cmd.bin")},
			{Key: aws.String("runs/a/cc.bin")},
		},
	}, nil).Once()

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/cc.bin", "a/cmd.bin", "b/cc.bin", "c/cc.bin"}, names)

	names, err = store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/cc.bin", "a/cmd.bin"}, names)

	client.AssertExpectations(t)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "p")

	deleteKey := mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" && aws.ToString(in.Key) == "p/x.bin"
	})
	client.On("DeleteObject", mock.Anything, deleteKey).Return(&s3.DeleteObjectOutput{}, nil).Once()
	client.On("DeleteObject", mock.Anything, deleteKey).Return(nil, &types.NoSuchKey{}).Once()
	boom := errors.New("internal error")
	client.On("DeleteObject", mock.Anything, deleteKey).Return(nil, boom).Once()

	require.NoError(t, store.Delete(ctx, "x.bin"))
	// Deleting a missing blob is not an error.
	require.NoError(t, store.Delete(ctx, "x.bin"))
	require.ErrorIs(t, store.Delete(ctx, "x.bin"), boom)

	client.AssertExpectations(t)
}
