package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrDoesNotExist   = errors.New("object does not exist")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// CustomResourceTypeKey is the custom metadata key a backend may carry
// to override the DAV resource type of an object.
const CustomResourceTypeKey = "resource_type"

// ObjectInfo describes a single object in the bucket. Fields other than
// Key, Size, ETag and Uploaded are populated only when the backend has
// them for the call that produced the info.
type ObjectInfo struct {
	Key                string
	Size               int64
	ETag               string
	Uploaded           time.Time
	ContentType        string
	ContentDisposition string
	ContentEncoding    string
	ContentLanguage    string
	CacheControl       string
	CacheExpires       string
	Custom             map[string]string
}

// Store is a flat key-value object store. Keys are slash-separated
// paths with no leading slash; there is no directory concept.
type Store interface {
	// List returns every object whose key starts with prefix, paging
	// through the backend until the listing is no longer truncated.
	// Potentially slow for very large prefixes.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Head returns object metadata, or ErrDoesNotExist.
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// Get returns object metadata and a body reader the caller must
	// close, or ErrDoesNotExist.
	Get(ctx context.Context, key string) (*ObjectInfo, io.ReadCloser, error)

	// Put creates or overwrites the object at key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Delete removes the object at key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend   string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type factory func(ctx context.Context, cfg Config) (Store, error)

var backends = map[string]factory{
	"s3": func(ctx context.Context, cfg Config) (Store, error) {
		return NewS3Store(ctx, cfg)
	},
	"minio": func(_ context.Context, cfg Config) (Store, error) {
		return NewMinioStore(cfg)
	},
	"mem": func(_ context.Context, _ Config) (Store, error) {
		return NewMemStore(), nil
	},
}

// New builds the Store selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	build, ok := backends[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
	return build(ctx, cfg)
}
