package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/danthegoodman1/relfetch/settings"
	"github.com/danthegoodman1/relfetch/utils"
	"github.com/rs/zerolog"
)

type (
	S3Store struct {
		bucket     string
		uploader   *s3manager.Uploader
		downloader *s3manager.Downloader
	}
)

// NewS3Store uses the store's bucket and endpoint, falling back to S3_BUCKET_NAME and
// S3_ENDPOINT. Credentials come from the store config, else the AWS env vars.
func NewS3Store(sc settings.StoreConfig) (*S3Store, error) {
	s3Config := &aws.Config{
		Region:      aws.String(utils.AWS_DEFAULT_REGION),
		Credentials: credentials.NewEnvCredentials(),
	}
	if sc.AccessKey != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(sc.AccessKey, sc.SecretKey, "")
	}
	endpoint := utils.Deref(nonEmpty(sc.Endpoint), utils.S3_ENDPOINT)
	if endpoint != "" {
		s3Config.Endpoint = aws.String(endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	return &S3Store{
		bucket:     utils.Deref(nonEmpty(sc.Bucket), utils.S3_BUCKET_NAME),
		uploader:   s3manager.NewUploader(s3Session),
		downloader: s3manager.NewDownloader(s3Session),
	}, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	buf := &aws.WriteAtBuffer{}

	st := time.Now()
	_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error downloading from s3: %w", err)
	}

	d := time.Since(st)
	logger.Debug().Str("key", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("downloaded external object from s3")

	return buf.Bytes(), nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	logger := zerolog.Ctx(ctx)

	st := time.Now()
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("error uploading to s3: %w", err)
	}

	d := time.Since(st)
	logger.Debug().Str("key", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded external object to s3")
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
