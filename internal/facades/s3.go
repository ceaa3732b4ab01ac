package facades

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
)

// S3Facade implements blob storage against a single S3 bucket: put, delete,
// and presigned read URLs. The raw blob key never leaves the service layer;
// callers hand out only presigned URLs.
type S3Facade struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Facade builds a facade for the given bucket using static credentials
// and an optional custom endpoint (for MinIO-style deployments).
func NewS3Facade(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string) (*S3Facade, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Facade{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}, nil
}

// Upload stores the blob under the given key.
func (f *S3Facade) Upload(ctx context.Context, uniqueName string, data []byte, contentType string) error {
	_, err := f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(f.bucket),
		Key:         aws.String(uniqueName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Log.Errorw("failed to upload blob", "key", uniqueName, "error", err)
		return err
	}

	return nil
}

// GetURL returns a presigned read URL for the blob, valid for expires.
func (f *S3Facade) GetURL(ctx context.Context, uniqueName string, expires time.Duration) (string, error) {
	req, err := f.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(uniqueName),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		logger.Log.Errorw("failed to presign blob url", "key", uniqueName, "error", err)
		return "", err
	}

	return req.URL, nil
}

// Delete removes the blob under the given key.
func (f *S3Facade) Delete(ctx context.Context, uniqueName string) error {
	_, err := f.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(uniqueName),
	})
	if err != nil {
		logger.Log.Errorw("failed to delete blob", "key", uniqueName, "error", err)
		return err
	}

	return nil
}
