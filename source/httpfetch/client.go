// Package httpfetch downloads grid files over HTTP into an on-disk cache.
package httpfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/viant/phoenixgrid/source"
)

// Response body size limits. HiRes spectra are ~6 MB and index pages a few
// hundred KB; the caps stop a misbehaving server from exhausting memory or
// disk.
const (
	DefaultMaxFileBytes = 256 << 20
	maxPageBytes        = 16 << 20
)

// ErrTooLarge reports a response body above the configured cap.
var ErrTooLarge = errors.New("httpfetch: response too large")

// Client fetches files and caches them under Dir, keyed by host and URL
// path. With an empty Dir nothing is cached.
type Client struct {
	HTTPClient *http.Client
	Dir        string
	MaxBytes   int64
	Logger     *slog.Logger
}

// New returns a client with sensible defaults.
func New(dir string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
		Dir:        dir,
		MaxBytes:   DefaultMaxFileBytes,
		Logger:     logger,
	}
}

// Open implements source.Opener. Cached files are served from disk;
// otherwise the file is downloaded first.
func (c *Client) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if c.Dir == "" {
		data, err := c.fetch(ctx, locator, c.maxBytes())
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	dest, err := c.CachePath(locator)
	if err != nil {
		return nil, err
	}
	if f, err := os.Open(dest); err == nil {
		c.logger().Debug("download cache hit", "url", locator, "path", dest)
		return f, nil
	}
	if err := c.Download(ctx, locator, dest); err != nil {
		return nil, err
	}
	return os.Open(dest)
}

// CachePath returns where locator is cached under Dir.
func (c *Client) CachePath(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", err
	}
	clean := path.Clean("/" + u.Path)
	if u.Host == "" || clean == "/" {
		return "", fmt.Errorf("httpfetch: cannot cache %q", locator)
	}
	return filepath.Join(c.Dir, u.Host, filepath.FromSlash(clean)), nil
}

// Download fetches locator into dest atomically.
func (c *Client) Download(ctx context.Context, locator, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.get(ctx, locator)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body := &cappedReader{r: resp.Body, remaining: c.maxBytes()}
	if err := source.WriteAtomic(dest, body); err != nil {
		return fmt.Errorf("download %s: %w", locator, err)
	}
	c.logger().Info("downloaded", "url", locator, "bytes", body.read, "elapsed", time.Since(start))
	return nil
}

// Page fetches a small document such as a directory index.
func (c *Client) Page(ctx context.Context, locator string) ([]byte, error) {
	return c.fetch(ctx, locator, maxPageBytes)
}

func (c *Client) fetch(ctx context.Context, locator string, limit int64) ([]byte, error) {
	resp, err := c.get(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(&cappedReader{r: resp.Body, remaining: limit})
}

func (c *Client) get(ctx context.Context, locator string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, locator)
	}
	return resp, nil
}

func (c *Client) maxBytes() int64 {
	if c.MaxBytes <= 0 {
		return DefaultMaxFileBytes
	}
	return c.MaxBytes
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// cappedReader fails once more than remaining bytes have been read, unlike
// io.LimitReader which truncates silently.
type cappedReader struct {
	r         io.Reader
	remaining int64
	read      int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	c.read += int64(n)
	if c.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
