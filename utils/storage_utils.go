package utils

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// S3Storage talks to an S3-compatible object service. Listing images are
// stored under Folder with deterministic names, so the basename of a
// public URL maps back to the stored object.
type S3Storage struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Folder    string
}

func (s *S3Storage) client() *s3.S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(s.Region),
		Endpoint: aws.String(s.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			s.AccessKey, s.SecretKey, "",
		),
	}))
	return s3.New(sess)
}

// ObjectKey builds the stored name for a fresh upload. The original
// filename is kept as suffix so URLs stay recognizable.
func (s *S3Storage) ObjectKey(filename string) string {
	name := strings.ReplaceAll(path.Base(filename), " ", "_")
	return fmt.Sprintf("%s/%d_%s_%s", s.Folder, time.Now().UnixNano(), uuid.NewString()[:8], name)
}

// Upload stores the payload under key and returns the public URL.
func (s *S3Storage) Upload(data []byte, key string, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := s.client().PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return s.URL(key), nil
}

// Delete removes the stored object.
func (s *S3Storage) Delete(key string) error {
	_, err := s.client().DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file from S3: %w", err)
	}
	return nil
}

// KeyFromURL maps a public URL, or a bare basename, back to the key it
// was stored under.
func (s *S3Storage) KeyFromURL(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		raw = u.Path
	}
	return s.Folder + "/" + path.Base(raw)
}

// URL returns the public URL of a stored object.
func (s *S3Storage) URL(key string) string {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.Bucket, endpoint, key)
}
