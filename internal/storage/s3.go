// Package storage uploads product images to S3 compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
)

const keyPrefix = "products/"

// PutObjectAPI defines the S3 operation used by Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient builds an S3 client. A non-empty endpoint switches to path style
// addressing against that URL (LocalStack, MinIO).
func NewClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Uploader stores images in one bucket and returns their public URLs.
type Uploader struct {
	client    PutObjectAPI
	bucket    string
	publicURL string
}

// NewUploader returns an Uploader for bucket. When publicURL is empty object
// URLs are derived from the bucket and region.
func NewUploader(client PutObjectAPI, bucket, region, publicURL string) *Uploader {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Image is one file to upload.
type Image struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadImage stores img under products/<uuid>.<ext> and returns its public URL.
// Content types other than image/* are rejected with a validation error.
func (u *Uploader) UploadImage(ctx context.Context, img Image) (string, error) {
	mediaType, _, err := mime.ParseMediaType(img.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", apperror.Validation("file", "only image uploads are allowed")
	}

	key := keyPrefix + uuid.NewString() + extension(img.FileName, mediaType)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        img.Body,
		ContentType: aws.String(mediaType),
	}
	if img.Size > 0 {
		input.ContentLength = aws.Int64(img.Size)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", apperror.Persistence("upload image", err)
	}

	return u.publicURL + "/" + key, nil
}

// extension prefers the uploaded file's extension and falls back to the media subtype.
func extension(fileName, mediaType string) string {
	if i := strings.LastIndexByte(fileName, '.'); i >= 0 && i < len(fileName)-1 {
		ext := strings.ToLower(fileName[i:])
		if !strings.ContainsAny(ext, "/\\") {
			return ext
		}
	}
	sub := strings.TrimPrefix(mediaType, "image/")
	if i := strings.IndexByte(sub, '+'); i >= 0 {
		sub = sub[:i]
	}
	if sub == "jpeg" {
		sub = "jpg"
	}
	return "." + sub
}
