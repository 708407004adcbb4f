package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var _ Store = &S3Store{}

// S3Store serves objects from an S3 bucket, or any S3-compatible store
// (R2, Wasabi, ...) when an endpoint is pinned in the config.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	const defaultRegion = "us-east-1"
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	var svc *s3.Client
	if cfg.Endpoint != "" {
		svc = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	} else {
		svc = s3.NewFromConfig(awsCfg)
		// no pinned endpoint: follow the bucket to its actual region
		bucketRegion, err := manager.GetBucketRegion(ctx, svc, cfg.Bucket)
		if err != nil {
			if s3IsNotFoundErr(err) {
				return nil, ErrDoesNotExist
			}
			return nil, err
		}
		if bucketRegion != region {
			awsCfg, err = awsconfig.LoadDefaultConfig(ctx, append(loadOpts,
				awsconfig.WithRegion(bucketRegion))...)
			if err != nil {
				return nil, err
			}
			svc = s3.NewFromConfig(awsCfg)
		}
	}

	return &S3Store{
		client: svc,
		bucket: cfg.Bucket,
	}, nil
}

func s3IsNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	var token *string
	for {
		input := &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			ContinuationToken: token,
		}
		if prefix != "" {
			input.Prefix = aws.String(prefix)
		}
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			infos = append(infos, ObjectInfo{
				Key:      aws.ToString(obj.Key),
				Size:     aws.ToInt64(obj.Size),
				ETag:     strings.Trim(aws.ToString(obj.ETag), `"`),
				Uploaded: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	slog.Debug("s3:ListObjectsV2", "bucket", s.bucket, "prefix", prefix, "objects", len(infos))
	return infos, nil
}

func (s *S3Store) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	slog.Debug("s3:HeadObject", "bucket", s.bucket, "key", key, "error", err)
	if s3IsNotFoundErr(err) {
		return nil, ErrDoesNotExist
	} else if err != nil {
		return nil, err
	}
	info := ObjectInfo{
		Key:                key,
		Size:               aws.ToInt64(out.ContentLength),
		ETag:               strings.Trim(aws.ToString(out.ETag), `"`),
		Uploaded:           aws.ToTime(out.LastModified),
		ContentType:        aws.ToString(out.ContentType),
		ContentDisposition: aws.ToString(out.ContentDisposition),
		ContentEncoding:    aws.ToString(out.ContentEncoding),
		ContentLanguage:    aws.ToString(out.ContentLanguage),
		CacheControl:       aws.ToString(out.CacheControl),
		Custom:             out.Metadata,
	}
	if out.Expires != nil {
		info.CacheExpires = out.Expires.UTC().Format(http.TimeFormat)
	}
	return &info, nil
}

func (s *S3Store) Get(ctx context.Context, key string) (*ObjectInfo, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	slog.Debug("s3:GetObject", "bucket", s.bucket, "key", key, "error", err)
	if s3IsNotFoundErr(err) {
		return nil, nil, ErrDoesNotExist
	} else if err != nil {
		return nil, nil, err
	}
	info := ObjectInfo{
		Key:                key,
		Size:               aws.ToInt64(out.ContentLength),
		ETag:               strings.Trim(aws.ToString(out.ETag), `"`),
		Uploaded:           aws.ToTime(out.LastModified),
		ContentType:        aws.ToString(out.ContentType),
		ContentDisposition: aws.ToString(out.ContentDisposition),
		ContentEncoding:    aws.ToString(out.ContentEncoding),
		ContentLanguage:    aws.ToString(out.ContentLanguage),
		CacheControl:       aws.ToString(out.CacheControl),
		Custom:             out.Metadata,
	}
	if out.Expires != nil {
		info.CacheExpires = out.Expires.UTC().Format(http.TimeFormat)
	}
	return &info, out.Body, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err := s.client.PutObject(ctx, input)
	slog.Debug("s3:PutObject", "bucket", s.bucket, "key", key, "size", size, "error", err)
	return err
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	// S3 DeleteObject is a no-op for absent keys, which is exactly the
	// contract Store.Delete wants
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	slog.Debug("s3:DeleteObject", "bucket", s.bucket, "key", key, "error", err)
	return err
}
