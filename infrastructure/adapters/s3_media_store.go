package adapters

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type s3MediaStore struct {
	logger   outbound.LoggerPort
	s3Svc    *s3.S3
	s3Config *config.S3Config
}

func NewS3MediaStore(logger outbound.LoggerPort, s3Svc *s3.S3, s3Config *config.S3Config) outbound.MediaStorePort {
	return &s3MediaStore{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

// Put stores the blob and returns the key it was stored under. The key, not
// a presigned URL, is what gets persisted on the entity.
func (s *s3MediaStore) Put(ctx context.Context, key string, content []byte) (string, error) {
	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(s.s3Config.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
	}

	_, err := s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload object to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    key,
		})
		return "", domain.TransientError("put s3 object %s: %v", key, err)
	}

	s.logger.DebugWithFields("Uploaded object to S3", map[string]interface{}{
		"bucket": s.s3Config.BucketName,
		"key":    key,
	})

	return key, nil
}

func (s *s3MediaStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3Svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to delete object from S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    key,
		})
		return domain.TransientError("delete s3 object %s: %v", key, err)
	}
	return nil
}

func (s *s3MediaStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.s3Svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to fetch object from S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    key,
		})
		return nil, domain.TransientError("get s3 object %s: %v", key, err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			s.logger.Error(closeErr, "Failed to close S3 object body")
		}
	}(out.Body)

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, domain.TransientError("read s3 object %s: %v", key, err)
	}
	return payload, nil
}
