package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

const (
	downloadTokenKey = "firebaseStorageDownloadTokens"
	downloadBaseURL  = "https://firebasestorage.googleapis.com/v0/b"
)

var (
	ErrUnsupportedKind = errors.New("unsupported media kind")
	ErrNotConfigured   = errors.New("media storage is not configured")
)

type UploadOptions struct {
	Kind        Kind
	Folder      string
	ContentType string
}

// Store hosts uploaded media and returns a permanent URL for it. The caller
// owns localPath and removes it afterwards.
type Store interface {
	Upload(ctx context.Context, localPath string, opts UploadOptions) (string, error)
}

// Unavailable is used when no media host is configured. Every upload fails.
type Unavailable struct{}

func (Unavailable) Upload(context.Context, string, UploadOptions) (string, error) {
	return "", ErrNotConfigured
}

type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	newToken   func() string
}

var _ Store = (*FirebaseStore)(nil)

// NewFirebaseStore uses the app's default bucket, or bucketName when set.
func NewFirebaseStore(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting storage client: %w", err)
	}

	var bucket *gcs.BucketHandle
	if bucketName != "" {
		bucket, err = client.Bucket(bucketName)
	} else {
		bucket, err = client.DefaultBucket()
	}
	if err != nil {
		return nil, fmt.Errorf("error getting storage bucket: %w", err)
	}

	attrs, err := bucket.Attrs(ctx)
	if err == nil && attrs != nil {
		bucketName = attrs.Name
	} else if bucketName == "" {
		return nil, fmt.Errorf("error resolving default bucket name: %w", err)
	}

	return &FirebaseStore{
		bucket:     bucket,
		bucketName: bucketName,
		newToken:   func() string { return uuid.New().String() },
	}, nil
}

func (s *FirebaseStore) Upload(ctx context.Context, localPath string, opts UploadOptions) (string, error) {
	if opts.Kind != KindImage && opts.Kind != KindVideo {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, opts.Kind)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	name := ObjectName(opts.Folder, opts.Kind, filepath.Ext(localPath))
	token := s.newToken()

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	w := s.bucket.Object(name).NewWriter(writeCtx)
	w.ContentType = opts.ContentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if err := copyObject(w, file, cancel); err != nil {
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}

	log.WithFields(log.Fields{
		"object":   name,
		"kind":     opts.Kind,
		"duration": time.Since(start).String(),
	}).Info("Media: uploaded object")

	return DownloadURL(s.bucketName, name, token), nil
}

// copyObject streams src into w and commits it with Close. On a copy error
// abort runs before Close so the partial object is discarded.
func copyObject(w io.WriteCloser, src io.Reader, abort func()) error {
	if _, err := io.Copy(w, src); err != nil {
		abort()
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

// ObjectName places the object under folder/kind with a random name.
func ObjectName(folder string, kind Kind, ext string) string {
	ext = strings.ToLower(ext)
	return path.Join(strings.Trim(folder, "/"), string(kind)+"s", uuid.New().String()+ext)
}

// DownloadURL builds the tokenized public URL Firebase serves for an object.
func DownloadURL(bucket, object, token string) string {
	return fmt.Sprintf("%s/%s/o/%s?alt=media&token=%s",
		downloadBaseURL,
		bucket,
		url.PathEscape(object),
		url.QueryEscape(token),
	)
}
