package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	putObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	calls         int
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.calls++
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

func TestUploader_UploadImage(t *testing.T) {
	t.Run("uploads image under products prefix", func(t *testing.T) {
		// given
		var key, contentType, bucket string
		client := &mockS3Client{
			putObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				key = *params.Key
				contentType = *params.ContentType
				bucket = *params.Bucket
				return &s3.PutObjectOutput{}, nil
			},
		}
		uploader := NewUploader(client, "product-images", "us-east-1", "http://localhost:4566/product-images/")

		// when
		url, err := uploader.UploadImage(context.Background(), Image{
			FileName:    "anel.PNG",
			ContentType: "image/png",
			Size:        4,
			Body:        strings.NewReader("\x89PNG"),
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "product-images", bucket)
		assert.Equal(t, "image/png", contentType)
		assert.Regexp(t, `^products/[0-9a-f-]{36}\.png$`, key)
		assert.Equal(t, "http://localhost:4566/product-images/"+key, url)
	})

	t.Run("rejects non image content", func(t *testing.T) {
		// given
		client := &mockS3Client{}
		uploader := NewUploader(client, "product-images", "us-east-1", "")

		// when
		_, err := uploader.UploadImage(context.Background(), Image{
			FileName:    "notes.pdf",
			ContentType: "application/pdf",
			Body:        strings.NewReader("%PDF"),
		})

		// then
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Zero(t, client.calls)
	})

	t.Run("storage failure is a persistence error", func(t *testing.T) {
		// given
		client := &mockS3Client{
			putObjectFunc: func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				return nil, errors.New("access denied")
			},
		}
		uploader := NewUploader(client, "product-images", "us-east-1", "")

		// when
		_, err := uploader.UploadImage(context.Background(), Image{
			FileName:    "brinco.jpg",
			ContentType: "image/jpeg",
			Body:        strings.NewReader("jpg"),
		})

		// then
		assert.ErrorIs(t, err, apperror.ErrPersistence)
	})
}

func TestNewUploader_DerivesPublicURL(t *testing.T) {
	uploader := NewUploader(&mockS3Client{}, "imgs", "sa-east-1", "")

	assert.Equal(t, "https://imgs.s3.sa-east-1.amazonaws.com", uploader.publicURL)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		fileName  string
		mediaType string
		want      string
	}{
		{"colar.JPG", "image/jpeg", ".jpg"},
		{"blob", "image/jpeg", ".jpg"},
		{"", "image/svg+xml", ".svg"},
		{"trailing.", "image/webp", ".webp"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName+"_"+tt.mediaType, func(t *testing.T) {
			assert.Equal(t, tt.want, extension(tt.fileName, tt.mediaType))
		})
	}
}
