// Package objstore serves grid files from an S3-compatible bucket.
package objstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/viant/phoenixgrid/internal/e"
)

// Options locate a bucket.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Name      string
	Prefix    string
}

// Bucket opens and lists objects below Prefix.
type Bucket struct {
	client *minio.Client
	name   string
	prefix string
}

// New connects to the bucket described by opts. No request is made until
// the bucket is used.
func New(opts Options) (*Bucket, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("objstore: bucket name is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return &Bucket{client: client, name: opts.Name, prefix: strings.Trim(opts.Prefix, "/")}, nil
}

// Key maps a locator relative to the prefix to its object key. Locators that
// already carry the prefix are returned unchanged.
func (b *Bucket) Key(locator string) string {
	locator = strings.TrimPrefix(locator, "/")
	if b.prefix == "" || locator == b.prefix || strings.HasPrefix(locator, b.prefix+"/") {
		return locator
	}
	return path.Join(b.prefix, locator)
}

// Open implements source.Opener.
func (b *Bucket) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	key := b.Key(locator)
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("object %s/%s: %w", b.name, key, err))
	}
	return obj, nil
}

// List returns the keys below the prefix that end with suffix, in the order
// the server lists them.
func (b *Bucket) List(ctx context.Context, suffix string) ([]string, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if b.prefix != "" {
		opts.Prefix = b.prefix + "/"
	}
	var keys []string
	for obj := range b.client.ListObjects(ctx, b.name, opts) {
		if obj.Err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), obj.Err)
		}
		if strings.HasSuffix(obj.Key, suffix) {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}
