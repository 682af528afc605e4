package archive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/tradeguard/internal/netx"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Config describes an S3-compatible bucket. Endpoint is optional and
// switches the client to path-style addressing (MinIO, localstack).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// S3Sink uploads reports through presigned PUT URLs.
type S3Sink struct {
	cfg     S3Config
	client  *http.Client
	expires time.Duration
}

// NewS3Sink returns a sink for cfg. A nil client means http.DefaultClient.
func NewS3Sink(cfg S3Config, client *http.Client) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive: s3 bucket is not configured")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &S3Sink{cfg: cfg, client: client, expires: 15 * time.Minute}, nil
}

func (s *S3Sink) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.cfg.Region)}
	if s.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// PresignPut returns a URL that accepts a PUT of key for a limited time.
func (s *S3Sink) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

// Store uploads data under Prefix/name and returns its s3:// location.
func (s *S3Sink) Store(ctx context.Context, name, contentType string, data []byte) (string, error) {
	name = cleanName(name)
	if name == "" {
		return "", ErrEmptyName
	}
	key := name
	if s.cfg.Prefix != "" {
		key = s.cfg.Prefix + "/" + name
	}

	url, err := s.PresignPut(ctx, key, contentType)
	if err != nil {
		return "", err
	}
	if err := netx.UploadPresigned(ctx, s.client, url, contentType, data); err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return "s3://" + s.cfg.Bucket + "/" + key, nil
}
