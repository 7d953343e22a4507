// Package imagestore copies product pictures picked on the device into the
// application's own image bucket so they outlive the picker's cache.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

const keyPrefix = "images/"

var ErrUnsupportedSource = errors.New("unsupported image source")

// NeedsPersist reports whether uri points at device-local storage.
// Remote URLs are kept as they are.
func NeedsPersist(uri string) bool {
	return strings.HasPrefix(uri, "file://") || strings.HasPrefix(uri, "content://")
}

type Store struct {
	bucket  *blob.Bucket
	baseURI string
	log     *slog.Logger
}

// Open opens the bucket at bucketURL (file://, mem://).
func Open(ctx context.Context, bucketURL string, logger *slog.Logger) (*Store, error) {
	b, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open image bucket: %w", err)
	}
	return New(b, bucketURL, logger), nil
}

func New(b *blob.Bucket, bucketURL string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	base := bucketURL
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return &Store{
		bucket:  b,
		baseURI: base,
		log:     logger.With("component", "imagestore"),
	}
}

func (s *Store) Close() error { return s.bucket.Close() }

// Save copies the image at src into the bucket under images/<uuid>.jpg and
// returns the new URI.
func (s *Store) Save(ctx context.Context, src string) (string, error) {
	data, err := readSource(ctx, src)
	if err != nil {
		return "", err
	}

	key := keyPrefix + uuid.NewString() + ".jpg"
	if err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: "image/jpeg"}); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if strings.HasSuffix(s.baseURI, "/") {
		return s.baseURI + key, nil
	}
	return s.baseURI + "/" + key, nil
}

// Resolve returns the URI to store on a product. Device-local images are
// copied; if that fails the original URI is kept.
func (s *Store) Resolve(ctx context.Context, uri string) string {
	if !NeedsPersist(uri) {
		return uri
	}
	stored, err := s.Save(ctx, uri)
	if err != nil {
		s.log.WarnContext(ctx, "image_persist_failed", "uri", uri, "error", err)
		return uri
	}
	return stored
}

// Read returns the bytes stored under key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	return s.bucket.ReadAll(ctx, key)
}

func readSource(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse image uri: %w", err)
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, u.Scheme)
	}

	dir, name := path.Split(u.Path)
	if name == "" {
		return nil, fmt.Errorf("%w: no file name in %s", ErrUnsupportedSource, src)
	}
	b, err := blob.OpenBucket(ctx, "file://"+dir)
	if err != nil {
		return nil, fmt.Errorf("open source dir: %w", err)
	}
	defer b.Close()

	data, err := b.ReadAll(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return data, nil
}
