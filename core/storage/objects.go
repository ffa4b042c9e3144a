package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"facility-matcher/core/table"

	"github.com/minio/minio-go/v7"
)

// ErrInvalidObjectKey is returned for object keys that escape the bucket layout.
var ErrInvalidObjectKey = errors.New("invalid object key")

// Content types for exported files.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectKey, key)
	}
	return path.Clean(key), nil
}

// ReadTable downloads an object and parses it as a table. The format follows the key's extension.
func ReadTable(ctx context.Context, client Client, bucket, key string, opts table.ReadOptions) (table.Table, error) {
	key, err := cleanKey(key)
	if err != nil {
		return table.Table{}, err
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	// Excel readers need the whole body; read it once for both formats.
	data, err := io.ReadAll(obj)
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	t, err := table.Read(path.Base(key), bytes.NewReader(data), opts)
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to parse object %s: %w", key, err)
	}
	return t, nil
}

// PutExport uploads an export under ExportsPrefix and returns the object key.
// name is the file name; a timestamp directory keeps repeated exports apart.
func PutExport(ctx context.Context, client Client, bucket, name string, data []byte, contentType string, now time.Time) (string, error) {
	name, err := cleanKey(name)
	if err != nil {
		return "", err
	}

	key := ExportsPrefix + now.UTC().Format("20060102T150405Z") + "/" + path.Base(name)
	_, err = client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client Client, bucket, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}
