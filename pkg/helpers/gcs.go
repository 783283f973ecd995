package helpers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty,
// Application Default Credentials are used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// ObjectMeta describes how an uploaded object is served.
type ObjectMeta struct {
	ContentType  string
	CacheControl string
	// DownloadName, when set, makes browsers save the object under that name.
	DownloadName string
}

// UploadObject streams r into bucket/objectPath and returns the object URL.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath string, meta ObjectMeta, r io.Reader) (string, error) {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = meta.ContentType
	wc.CacheControl = meta.CacheControl
	if meta.DownloadName != "" {
		wc.ContentDisposition = fmt.Sprintf("attachment; filename=%q", meta.DownloadName)
	}
	wc.ChunkSize = 0 // single request; exports are small
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return ObjectURL(bucket, objectPath), nil
}

// ObjectURL builds the storage.googleapis.com URL for an object. Access
// still depends on the bucket's IAM policy.
func ObjectURL(bucket, objectPath string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: path.Join("/", bucket, objectPath)}
	return u.String()
}
