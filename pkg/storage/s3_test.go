package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// apiError implements smithy.APIError for not-found simulation.
type apiError struct {
	code string
}

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &apiError{code: "NotFound"}
	}
	size := int64(len(data))
	return &s3.HeadObjectOutput{ContentLength: &size}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestBucketRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBucket(newFakeS3(), "datasets", "staging")

	w, err := b.Create(ctx, "run/embeddings.bin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "tensor bytes"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := b.Open(ctx, "run/embeddings.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "tensor bytes" {
		t.Fatalf("got %q", got)
	}

	info, err := b.Stat(ctx, "run/embeddings.bin")
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != int64(len("tensor bytes")) {
		t.Fatalf("size = %d", info.Size)
	}
}

func TestBucketPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	b := NewBucket(fake, "datasets", "v2/")

	w, _ := b.Create(ctx, "x.bin")
	w.Close()
	if _, ok := fake.objects["v2/x.bin"]; !ok {
		t.Fatalf("keys = %v, want v2/x.bin", fake.objects)
	}
}

func TestBucketOpenMissing(t *testing.T) {
	b := NewBucket(newFakeS3(), "datasets", "")
	_, err := b.Open(context.Background(), "missing.bin")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("got %v, want fs.ErrNotExist", err)
	}
}

func TestBucketCreateUploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("upload refused")
	b := NewBucket(fake, "datasets", "")

	w, err := b.Create(context.Background(), "x.bin")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "data")
	if err := w.Close(); err == nil {
		t.Fatal("Close should report the upload error")
	}
}

func TestBucketRemove(t *testing.T) {
	ctx := context.Background()
	b := NewBucket(newFakeS3(), "datasets", "")

	w, _ := b.Create(ctx, "x.bin")
	w.Close()
	if err := b.Remove(ctx, "x.bin"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Stat(ctx, "x.bin"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("got %v, want fs.ErrNotExist", err)
	}
}
