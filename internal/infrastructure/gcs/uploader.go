package gcs

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/morningforge/pkg/helpers"
)

// Uploader writes private, uncached objects to one bucket.
type Uploader struct {
	Client *storage.Client
	Bucket string
}

func NewUploader(client *storage.Client, bucket string) *Uploader {
	return &Uploader{Client: client, Bucket: bucket}
}

func (u *Uploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if u == nil || u.Client == nil || u.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	meta := helpers.ObjectMeta{
		ContentType:  contentType,
		CacheControl: "private, no-store",
		DownloadName: path.Base(objectPath),
	}
	return helpers.UploadObject(ctx, u.Client, u.Bucket, objectPath, meta, r)
}
