package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"parkspot/config"
	"parkspot/infras/otel"
	"parkspot/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3 stores spot photos in an S3 compatible bucket.
type S3 interface {
	Upload(ctx context.Context, bucketName, directory, fileName, contentType string, data []byte) (url string, err error)
	Delete(ctx context.Context, bucketName, directory, objectName string) error
}

type s3Impl struct {
	client       *s3.Client
	bucket       string
	publicDomain string
	otel         otel.Otel
}

func (svc *s3Impl) Upload(ctx context.Context, bucketName, directory, fileName, contentType string, data []byte) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Upload")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.bucketOr(bucketName)
	key := path.Join(directory, fileName)

	scope.SetAttributes(map[string]any{
		"bucket":     bucket,
		"object_key": key,
		"size":       len(data),
	})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	return ObjectURL(svc.publicDomain, key), nil
}

func (svc *s3Impl) Delete(ctx context.Context, bucketName, directory, objectName string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.bucketOr(bucketName)
	key := path.Join(directory, objectName)

	scope.SetAttributes(map[string]any{
		"bucket":     bucket,
		"object_key": key,
	})

	_, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("object_key", key).Msg("failed to delete file from S3")

		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}

	return nil
}

func (svc *s3Impl) bucketOr(bucketName string) string {
	if bucketName == constant.Empty {
		return svc.bucket
	}

	return bucketName
}

// ObjectURL is the public address of key under domain.
func ObjectURL(domain, key string) string {
	return strings.TrimRight(domain, "/") + "/" + strings.TrimLeft(key, "/")
}

func New(cfg *config.Config, otl otel.Otel) S3 {
	settings := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			constant.Empty,
		)),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to load aws configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.APIEndpoint != constant.Empty {
			o.BaseEndpoint = aws.String(settings.APIEndpoint)
		}

		o.UsePathStyle = true
		o.Region = settings.Region
	})

	return &s3Impl{
		client:       client,
		bucket:       settings.BucketName,
		publicDomain: settings.PublicDomain,
		otel:         otl,
	}
}
