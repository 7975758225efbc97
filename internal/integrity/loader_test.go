package integrity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelguard/pkg/platform/sentinel"
)

func TestBytesLoader(t *testing.T) {
	raw := []byte{1, 2, 3}
	got, err := BytesLoader(raw).Load(context.Background())
	require.NoError(t, err)
	got[0] = 9
	assert.Equal(t, byte(1), raw[0], "callers get a copy")

	_, err = BytesLoader(nil).Load(context.Background())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assmdb")
	require.NoError(t, os.WriteFile(path, rawWhitelist("a:1"), 0o600))

	got, err := FileLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rawWhitelist("a:1"), got)

	_, err = FileLoader{}.Load(context.Background())
	require.ErrorIs(t, err, sentinel.ErrConfigurationMissing)

	_, err = FileLoader{Path: path + ".missing"}.Load(context.Background())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

// newS3Client points a real S3 client at a local fake object store.
func newS3Client(t *testing.T, objects map[string][]byte) *s3.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(srv.URL)
	})
}

func TestS3Loader(t *testing.T) {
	client := newS3Client(t, map[string][]byte{
		"/guard/whitelist/assmdb": rawWhitelist("UnityEngine:1758243997"),
	})

	t.Run("fetches the object", func(t *testing.T) {
		l, err := NewS3LoaderWithClient(client, "guard", "whitelist/assmdb")
		require.NoError(t, err)

		got, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, rawWhitelist("UnityEngine:1758243997"), got)
	})

	t.Run("missing object is not found", func(t *testing.T) {
		l, err := NewS3LoaderWithClient(client, "guard", "whitelist/other")
		require.NoError(t, err)

		_, err = l.Load(context.Background())
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("bucket and key are required", func(t *testing.T) {
		_, err := NewS3LoaderWithClient(client, "", "k")
		require.ErrorIs(t, err, sentinel.ErrConfigurationMissing)
		_, err = NewS3Loader(context.Background(), S3Config{Bucket: "b"})
		require.ErrorIs(t, err, sentinel.ErrConfigurationMissing)
	})
}
