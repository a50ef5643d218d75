package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/domain"
)

// Client хранит картинки профиля в MinIO (S3-совместимое хранилище).
// Реализует ports.FileStorage; ключом объекта служит имя файла картинки
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	logger     *slog.Logger
}

// NewMinioClient создает клиент и при необходимости создаёт бакет
func NewMinioClient(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	if cfg.MinioAccessKeyID == "" || cfg.MinioSecretAccessKey == "" || cfg.MinioBucketName == "" ||
		cfg.MinioEndpoint == "" || cfg.MinioRegion == "" {
		return nil, fmt.Errorf("MinIO credentials (MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, MINIO_BUCKET_NAME, MINIO_ENDPOINT, MINIO_REGION) must be set in environment variables")
	}

	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)

	cfgAws, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.MinioRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(cfgAws, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	c := &Client{
		s3Client:   s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: cfg.MinioBucketName,
		logger:     logger,
	}
	if err := c.ensureBucket(ctx, cfg.MinioRegion); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	c.logger.Info("bucket not found, creating", "bucket", c.bucketName)

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	// us-east-1 нельзя указывать как LocationConstraint
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket '%s': %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)}, 30*time.Second); err != nil {
		return fmt.Errorf("failed waiting for bucket '%s' to be created: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created successfully", "bucket", c.bucketName)
	return nil
}

// Save загружает картинку. Занятый ключ даёт domain.ErrFileExists, тело при этом не читается
func (c *Client) Save(ctx context.Context, key string, content io.Reader, contentType string) error {
	exists, err := c.exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrFileExists
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	out, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file %s to bucket %s: %w", key, c.bucketName, err)
	}

	c.logger.Info("file uploaded", "key", key, "location", out.Location)
	return nil
}

func (c *Client) exists(ctx context.Context, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check file %s in bucket %s: %w", key, c.bucketName, err)
}

// Open получает содержимое картинки. Нет объекта: domain.ErrNotFound
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file %s from bucket %s: %w", key, c.bucketName, err)
	}
	return output.Body, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", key, c.bucketName, err)
	}
	c.logger.Info("file deleted", "key", key)
	return nil
}
