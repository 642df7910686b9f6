package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"drivebox/file-api/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Uploads above this go through the multipart manager. With the default
// 5 MiB cap everything takes the single PutObject path, but the cap is
// configurable and large uploads shouldn't sit in one request.
const minMultipartSize = 12 << 20

// S3 stores content in a single bucket, one object per key. Any
// S3-compatible endpoint works (AWS, R2, minio) through s3.endpoint.
type S3 struct {
	C      *s3.Client
	Bucket *string
}

func NewS3() (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("s3.access_key_id"),
			viper.GetString("s3.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("s3.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := viper.GetString("s3.endpoint"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if region := viper.GetString("s3.region"); region != "" {
			o.Region = region
		} else {
			o.Region = "auto"
		}
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		C:      client,
		Bucket: bucket,
	}, nil
}

func (s *S3) Place(ctx context.Context, r io.Reader, declaredName string) (*Placement, error) {
	// Spool to disk first. S3 wants a seekable body with a known length
	// and the cap has to be enforced before any bytes leave the machine.
	tmp, placement, err := spool(os.TempDir(), r, declaredName)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(placement.Key),
		Body:          tmp,
		ContentLength: aws.Int64(placement.Size),
		ContentType:   aws.String(placement.ContentType),
	}

	if placement.Size > minMultipartSize {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = u.Upload(ctx, input)
	} else {
		_, err = s.C.PutObject(ctx, input)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	return placement, nil
}

func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	out, err := s.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, 0, apperr.ErrNotFound
		}

		return nil, 0, err
	}

	return out.Body, aws.ToInt64(out.ContentLength), nil
}

func (s *S3) Remove(ctx context.Context, key string) error {
	// DeleteObject on an absent key already succeeds, which is exactly
	// the idempotence Remove promises
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})

	return err
}
