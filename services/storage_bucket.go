package services

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

const downloadTokenMetadataKey = "firebaseStorageDownloadTokens"

type StorageBucket struct {
	*storage.BucketHandle
	name string
}

func NewStorageBucket(ctx context.Context, app *firebase.App, bucketName string) (*StorageBucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucketHandle, err := client.Bucket(bucketName)
	if err != nil {
		return nil, err
	}

	return &StorageBucket{
		BucketHandle: bucketHandle,
		name:         bucketName,
	}, nil
}

// Put uploads the blob and returns a token based download URL, the same form the Firebase client
// SDKs hand out. Cancelling ctx abandons the upload.
func (sb *StorageBucket) Put(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	token := uuid.NewString()
	w := sb.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenMetadataKey: token}
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("writing %v: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing %v: %w", path, err)
	}
	return DownloadURL(sb.name, path, token), nil
}

func DownloadURL(bucket, path, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(path), url.QueryEscape(token))
}
