package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-http-utils/headers"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ Store = &MinioStore{}

// MinioStore talks to an S3-compatible endpoint through the MinIO SDK.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client failed: %w", err)
	}
	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func minioIsNotFoundErr(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func (m *MinioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var infos []ObjectInfo
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}
		infos = append(infos, ObjectInfo{
			Key:         object.Key,
			Size:        object.Size,
			ETag:        strings.Trim(object.ETag, `"`),
			Uploaded:    object.LastModified,
			ContentType: object.ContentType,
			Custom:      object.UserMetadata,
		})
	}
	slog.Debug("minio:ListObjects", "bucket", m.bucket, "prefix", prefix, "objects", len(infos))
	return infos, nil
}

func (m *MinioStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	stat, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	slog.Debug("minio:StatObject", "bucket", m.bucket, "key", key, "error", err)
	if minioIsNotFoundErr(err) {
		return nil, ErrDoesNotExist
	} else if err != nil {
		return nil, err
	}
	info := statToObjectInfo(key, stat)
	return &info, nil
}

func (m *MinioStore) Get(ctx context.Context, key string) (*ObjectInfo, io.ReadCloser, error) {
	object, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, err
	}
	// GetObject is lazy: Stat performs the actual request and surfaces
	// a missing key
	stat, err := object.Stat()
	slog.Debug("minio:GetObject", "bucket", m.bucket, "key", key, "error", err)
	if minioIsNotFoundErr(err) {
		_ = object.Close()
		return nil, nil, ErrDoesNotExist
	} else if err != nil {
		_ = object.Close()
		return nil, nil, err
	}
	info := statToObjectInfo(key, stat)
	return &info, object, nil
}

func (m *MinioStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	slog.Debug("minio:PutObject", "bucket", m.bucket, "key", key, "size", size, "error", err)
	return err
}

func (m *MinioStore) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	slog.Debug("minio:RemoveObject", "bucket", m.bucket, "key", key, "error", err)
	if minioIsNotFoundErr(err) {
		err = nil
	}
	return err
}

func statToObjectInfo(key string, stat minio.ObjectInfo) ObjectInfo {
	info := ObjectInfo{
		Key:                key,
		Size:               stat.Size,
		ETag:               strings.Trim(stat.ETag, `"`),
		Uploaded:           stat.LastModified,
		ContentType:        stat.ContentType,
		ContentDisposition: stat.Metadata.Get(headers.ContentDisposition),
		ContentEncoding:    stat.Metadata.Get(headers.ContentEncoding),
		ContentLanguage:    stat.Metadata.Get(headers.ContentLanguage),
		CacheControl:       stat.Metadata.Get(headers.CacheControl),
		Custom:             stat.UserMetadata,
	}
	if !stat.Expires.IsZero() {
		info.CacheExpires = stat.Expires.UTC().Format(http.TimeFormat)
	}
	return info
}
