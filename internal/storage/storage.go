package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Tag is a key/value pair attached to a stored object.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ObjectStore is the surface the workflow needs from object storage.
// Put and Copy replace any existing tag set when tags are provided.
// Delete on a missing object is a no-op.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, tags ...Tag) error
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, tags ...Tag) error
	Delete(ctx context.Context, bucket, key string) error
	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Tags(ctx context.Context, bucket, key string) ([]Tag, error)
	// Locate reports the region a bucket lives in.
	Locate(ctx context.Context, bucket string) (string, error)
}
