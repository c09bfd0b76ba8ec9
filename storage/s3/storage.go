package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rs/zerolog/log"

	"package-index/config"
	"package-index/storage"
)

// ErrIncompleteS3Config is returned when the S3 configuration is incomplete
var ErrIncompleteS3Config = errors.New("incomplete S3 configuration")

// S3Storage implements the store interface against an s3-compatible bucket.
// Object keys are the relative upload paths.
type S3Storage struct {
	S3Client *s3.Client
	Timeout  time.Duration
	Bucket   string
}

var _ storage.Store = (*S3Storage)(nil)

// New creates a new s3-based store from the storage configuration
func New() (*S3Storage, error) {
	s3Cfg := config.Cfg.Storage.S3

	// check for required S3 configuration
	if strings.TrimSpace(s3Cfg.AccessKey) == "" ||
		strings.TrimSpace(s3Cfg.KeyID) == "" ||
		strings.TrimSpace(s3Cfg.Endpoint) == "" ||
		strings.TrimSpace(s3Cfg.Region) == "" ||
		strings.TrimSpace(s3Cfg.Bucket) == "" ||
		strings.TrimSpace(s3Cfg.Timeout) == "" {
		return nil, fmt.Errorf("%w", ErrIncompleteS3Config)
	}

	s3Client := s3.New(s3.Options{
		UsePathStyle: true,
		BaseEndpoint: aws.String(s3Cfg.Endpoint),
		Region:       s3Cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				s3Cfg.KeyID,
				s3Cfg.AccessKey,
				"",
			),
		),
	})

	timeoutDuration, err := time.ParseDuration(s3Cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 timeout value: %w", err)
	}

	return &S3Storage{
		S3Client: s3Client,
		Timeout:  timeoutDuration,
		Bucket:   s3Cfg.Bucket,
	}, nil
}

// Save uploads content under the given relative path
func (s *S3Storage) Save(name string, content []byte) error {
	uploader := manager.NewUploader(s.S3Client)

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(name),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		var mu manager.MultiUploadFailure
		if errors.As(err, &mu) {
			log.Error().
				Msg(fmt.Sprintf("multi-upload failure (upload_id: %s): %v", mu.UploadID(), mu))

			return fmt.Errorf(
				"multi-upload failure (upload_id: %s): %w",
				mu.UploadID(),
				mu,
			)
		}

		log.Error().Err(err).Msg("upload failure")

		return fmt.Errorf("upload failure: %w", err)
	}

	log.Debug().
		Str("location", result.Location).
		Msg("successfully uploaded file to s3 bucket")

	return nil
}

// Open reads the content stored under the given relative path
func (s *S3Storage) Open(name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	object, err := s.S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, storage.ErrFileNotFound
		}

		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}

	var content []byte
	if object.Body != nil {
		defer func() {
			if cerr := object.Body.Close(); cerr != nil {
				log.Error().Err(cerr).Msg("failed to close S3 object body")
			}
		}()

		content, err = io.ReadAll(object.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read file content: %w", err)
		}
	} else {
		content = []byte{}
	}

	return content, nil
}

// Remove deletes the stored object. A missing object is an error: S3 deletes
// are idempotent, so presence is checked first.
func (s *S3Storage) Remove(name string) error {
	exists, err := s.Exists(name)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", storage.ErrFileNotFound, name)
	}

	return s.RemoveIfExists(name)
}

// RemoveIfExists deletes the stored object if present
func (s *S3Storage) RemoveIfExists(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	_, err := s.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// Exists reports whether an object is stored under the given relative path
func (s *S3Storage) Exists(name string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	_, err := s.S3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}

		return false, fmt.Errorf("failed to check file in S3: %w", err)
	}

	return true, nil
}
