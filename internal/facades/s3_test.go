package facades

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupMinioContainer(t *testing.T) (*S3Facade, func()) {
	t.Helper()

	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "minio/minio:latest",
		Env:          map[string]string{"MINIO_ROOT_USER": "minioadmin", "MINIO_ROOT_PASSWORD": "minioadmin"},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp"),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "9000")
	endpoint := fmt.Sprintf("http://%s:%d", host, port.Int())

	facade, err := NewS3Facade(ctx, endpoint, "us-east-1", "images", "minioadmin", "minioadmin")
	assert.NoError(t, err)

	_, err = facade.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String("images"),
	})
	assert.NoError(t, err)

	teardown := func() {
		container.Terminate(ctx)
	}

	return facade, teardown
}

func TestS3Facade(t *testing.T) {
	facade, teardown := setupMinioContainer(t)
	defer teardown()

	ctx := context.Background()
	data := []byte("fake image bytes")

	t.Run("upload then fetch via presigned url", func(t *testing.T) {
		assert.NoError(t, facade.Upload(ctx, "key-1", data, "image/png"))

		url, err := facade.GetURL(ctx, "key-1", time.Hour)
		assert.NoError(t, err)
		assert.True(t, strings.Contains(url, "key-1"))
		// Presigned, not a raw bucket link
		assert.True(t, strings.Contains(url, "X-Amz-Signature"))

		resp, err := http.Get(url)
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		assert.NoError(t, err)
		assert.Equal(t, data, body)
	})

	t.Run("delete removes the blob", func(t *testing.T) {
		assert.NoError(t, facade.Upload(ctx, "key-2", data, "image/jpeg"))
		assert.NoError(t, facade.Delete(ctx, "key-2"))

		url, err := facade.GetURL(ctx, "key-2", time.Hour)
		assert.NoError(t, err)

		resp, err := http.Get(url)
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
