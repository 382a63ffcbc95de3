package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3API abstracts the S3 operations Bucket uses; *s3.Client satisfies it.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Bucket implements Store on one S3 (or S3-compatible) bucket, with keys
// placed under an optional prefix. The caller configures the client
// (credentials, region, endpoint); this package never does.
type Bucket struct {
	client S3API
	bucket string
	prefix string
}

// NewBucket creates an S3-backed store. Pass prefix "" to address the
// whole bucket.
func NewBucket(client S3API, bucket, prefix string) *Bucket {
	return &Bucket{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (b *Bucket) key(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + "/" + key
}

// Open fetches the named object via GetObject.
func (b *Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("storage: open %s: %w", key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("storage: open %s: %w", key, err)
	}
	return out.Body, nil
}

// Create returns a writer whose Close uploads the object via PutObject.
// The upload streams through a pipe in a background goroutine; Close
// blocks until it finishes and reports its error.
func (b *Bucket) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan struct{})}
	go func() {
		defer close(u.done)
		_, u.err = b.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(b.key(key)),
			Body:   pr,
		})
		// Unblock pending writes when the upload fails early.
		pr.CloseWithError(u.err)
	}()
	return u, nil
}

// Stat describes the named object via HeadObject.
func (b *Bucket) Stat(ctx context.Context, key string) (Info, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return Info{}, fmt.Errorf("storage: stat %s: %w", key, os.ErrNotExist)
		}
		return Info{}, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	info := Info{Key: key}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	return info, nil
}

// Remove deletes the named object. S3 DeleteObject already succeeds for
// missing keys.
func (b *Bucket) Remove(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(key)),
	})
	return err
}

// upload streams Create data to a background PutObject call.
type upload struct {
	pw   *io.PipeWriter
	done chan struct{}
	err  error
}

func (u *upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

// Close signals EOF to PutObject, waits for the upload, and reports its
// error.
func (u *upload) Close() error {
	u.pw.Close()
	<-u.done
	return u.err
}

// isNotFound reports whether err is the S3 missing-object condition.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ Store = (*Bucket)(nil)
