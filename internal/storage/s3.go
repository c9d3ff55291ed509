// Package storage persists decomposition artifacts and fetches source
// bundles. Artifacts go to S3 under a per-job prefix; encryption at
// rest is optional and uses AES-GCM with a PBKDF2-derived key.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Store wraps the AWS S3 client for artifact and source handling.
type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	prefix     string
	// crypt is nil when encryption at rest is disabled.
	crypt *Cryptor
}

// Options configures the store. AccessKey/SecretKey are optional; when
// empty the default AWS credential chain applies.
type Options struct {
	Bucket     string
	Prefix     string
	Region     string
	AccessKey  string
	SecretKey  string
	EncryptKey string
}

func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	var loadOpts []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	cli := s3.NewFromConfig(cfg)
	st := &S3Store{
		client:     cli,
		uploader:   manager.NewUploader(cli),
		downloader: manager.NewDownloader(cli),
		bucket:     opts.Bucket,
		prefix:     opts.Prefix,
	}
	if opts.EncryptKey != "" {
		st.crypt = NewCryptor(opts.EncryptKey)
	}
	return st, nil
}

// ArtifactKey builds the object key for one artifact of a job.
func (s *S3Store) ArtifactKey(jobID, name string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s/%s", jobID, name)
	}
	return fmt.Sprintf("%s/%s/%s", s.prefix, jobID, name)
}

// PutArtifact uploads one artifact, retrying transient failures.
func (s *S3Store) PutArtifact(ctx context.Context, jobID, name string, data []byte) (string, error) {
	key := s.ArtifactKey(jobID, name)
	body := data
	meta := map[string]string{"name": name, "content-type": "application/pdf"}
	if s.crypt != nil {
		enc, err := s.crypt.Seal(data)
		if err != nil {
			return "", fmt.Errorf("encrypt artifact: %w", err)
		}
		body = enc
		meta["encrypted"] = "true"
	}

	err := retry.Do(func() error {
		_, uerr := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:   aws.String(s.bucket),
			Key:      aws.String(key),
			Body:     bytes.NewReader(body),
			Metadata: meta,
		})
		return uerr
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	log.Debug().Str("key", key).Int("size", len(data)).Msg("artifact uploaded")
	return key, nil
}

// GetSource downloads and, if needed, decrypts a source bundle by key.
func (s *S3Store) GetSource(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	data := buf.Bytes()
	if s.crypt != nil && isSealed(data) {
		dec, derr := s.crypt.Open(data)
		if derr != nil {
			return nil, fmt.Errorf("decrypt %s: %w", key, derr)
		}
		return dec, nil
	}
	return data, nil
}

// Head reports whether the object exists.
func (s *S3Store) Head(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}
