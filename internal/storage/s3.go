package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage implements Storage for AWS S3 and S3-compatible services.
type S3Storage struct {
	client       *s3.Client
	uploader     *manager.Uploader
	bucket       string
	prefix       string
	objectLock   bool
	usePathStyle bool
}

// S3Config holds S3-specific configuration.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // Optional custom endpoint
	Prefix          string // Optional prefix for all keys
	ObjectLock      bool   // Enable object lock with MD5
	UsePathStyle    bool   // For S3-compatible services
}

// NewS3Storage creates a new S3 storage provider.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOpts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = cfg.UsePathStyle
		},
	}

	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &S3Storage{
		client:       client,
		uploader:     manager.NewUploader(client),
		bucket:       cfg.Bucket,
		prefix:       cfg.Prefix,
		objectLock:   cfg.ObjectLock,
		usePathStyle: cfg.UsePathStyle,
	}, nil
}

// Upload implements Storage.Upload.
func (s *S3Storage) Upload(ctx context.Context, key string, reader io.Reader, metadata map[string]string) error {
	fullKey := s.getFullKey(key)

	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(fullKey),
		Body:     reader,
		Metadata: metadata,
	}

	// Object lock buckets require Content-MD5, which needs the whole body up front.
	if s.objectLock {
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("failed to read data for MD5: %w", err)
		}
		input.ContentMD5 = aws.String(contentMD5(data))
		input.Body = bytes.NewReader(data)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// Delete implements Storage.Delete.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	fullKey := s.getFullKey(key)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// List implements Storage.List.
func (s *S3Storage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	fullPrefix := s.getFullKey(prefix)

	var objects []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          s.stripPrefix(*obj.Key),
				Size:         *obj.Size,
				LastModified: *obj.LastModified,
				Metadata:     make(map[string]string), // Metadata requires separate HEAD request
			})
		}
	}

	return objects, nil
}

// LatestSnapshotTime implements Storage.LatestSnapshotTime.
func (s *S3Storage) LatestSnapshotTime(ctx context.Context) (time.Time, error) {
	objects, err := s.List(ctx, "")
	if err != nil {
		return time.Time{}, err
	}

	latest, ok := latestObject(objects)
	if !ok {
		return time.Time{}, nil
	}

	// List does not return user metadata; fetch it for the newest object only.
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getFullKey(latest.Key)),
	})
	if err != nil {
		return latest.LastModified, nil
	}

	return snapshotTime(head.Metadata, latest.LastModified), nil
}

// getFullKey returns the full S3 key with prefix.
func (s *S3Storage) getFullKey(key string) string {
	return joinKey(s.prefix, key)
}

// stripPrefix removes the storage prefix from a key.
func (s *S3Storage) stripPrefix(key string) string {
	return trimKeyPrefix(s.prefix, key)
}

// contentMD5 returns the base64 MD5 digest S3 expects in Content-MD5.
func contentMD5(data []byte) string {
	hash := md5.Sum(data)
	return base64.StdEncoding.EncodeToString(hash[:])
}
