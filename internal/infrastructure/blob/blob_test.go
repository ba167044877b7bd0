package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	err := store.Put(context.Background(), "signatures/2026-1016-001/a.png", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "signatures", "2026-1016-001", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	assert.Error(t, store.Put(context.Background(), "../escape.png", "image/png", []byte{1}))
	assert.Error(t, store.Put(context.Background(), "", "image/png", []byte{1}))
}

type mockPutter struct {
	PutObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params, optFns...)
}

func TestS3Store_Put(t *testing.T) {
	var got *s3.PutObjectInput
	var body []byte
	store := &S3Store{
		bucket: "devis-signatures",
		client: &mockPutter{PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			got = params
			body, _ = io.ReadAll(params.Body)
			return &s3.PutObjectOutput{}, nil
		}},
	}

	err := store.Put(context.Background(), "signatures/x.png", "image/png", []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, "devis-signatures", aws.ToString(got.Bucket))
	assert.Equal(t, "signatures/x.png", aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(got.ContentLength))
	assert.Equal(t, []byte("png"), body)
}

func TestS3Store_PutError(t *testing.T) {
	store := &S3Store{
		bucket: "b",
		client: &mockPutter{PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("access denied")
		}},
	}

	err := store.Put(context.Background(), "k", "image/png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
