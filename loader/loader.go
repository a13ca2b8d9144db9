// Package loader resolves task file references to bytes. A task may point at
// an object store (s3://...), a Label Studio upload (/data/upload/... or a
// full URL), or a file inside one of the mounted data directories.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/labelkit/labelkit/config"
)

// ErrNotMounted indicates a local file reference that did not resolve inside
// the configured mount directories; the troubleshooting hint of the shipped
// docker setup applies (check your volume mounts).
var ErrNotMounted = errors.New("file not found in mounted directories")

// Loader fetches task files. Safe for concurrent use.
type Loader struct {
	cfg    config.IConfig
	logger *zap.Logger
	client *http.Client

	s3Once sync.Once
	s3     *minio.Client
	s3Err  error
}

func New(cfg config.IConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Load resolves a task file reference to its content.
func (l *Loader) Load(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "s3:"):
		return l.loadS3(ctx, ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.loadHTTP(ctx, ref)
	case strings.HasPrefix(ref, "/data/"):
		// Label Studio upload path, served by the Label Studio host.
		return l.loadUpload(ctx, ref)
	default:
		return l.loadLocal(ref)
	}
}

// LoadLocalImage resolves a reference to a file in the images mount by its
// base name. This mirrors the PNG-per-page layout the services are deployed
// with: whatever the task URL looks like, the file itself is mounted.
func (l *Loader) LoadLocalImage(ref string) ([]byte, error) {
	imagesDir, err := l.cfg.ImagesDir()
	if err != nil {
		return nil, err
	}
	name := path.Base(refPath(unwrapRef(ref)))
	data, err := os.ReadFile(filepath.Join(imagesDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not in %s", ErrNotMounted, name, imagesDir)
		}
		return nil, err
	}
	return data, nil
}

// unwrapRef unwraps query-style upload references ("...?d=<path>") to the
// embedded path, so the real file name survives the URL parse.
func unwrapRef(ref string) string {
	if u, err := url.Parse(ref); err == nil {
		if d := u.Query().Get("d"); d != "" {
			return d
		}
	}
	return ref
}

// refPath strips query parameters from a reference, keeping the path part.
func refPath(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		return u.Path
	}
	return ref
}

func (l *Loader) loadLocal(ref string) ([]byte, error) {
	return l.LoadLocalImage(ref)
}

// ParseS3 splits an s3://bucket/key reference into bucket and key.
func ParseS3(ref string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(ref, "s3://")
	trimmed = strings.TrimPrefix(trimmed, "s3:")
	trimmed = strings.TrimPrefix(trimmed, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed s3 reference %q", ref)
	}
	return parts[0], parts[1], nil
}

func (l *Loader) s3Client() (*minio.Client, error) {
	l.s3Once.Do(func() {
		settings, err := l.cfg.S3()
		if err != nil {
			l.s3Err = fmt.Errorf("read s3 settings: %w", err)
			return
		}
		endpoint := settings.Endpoint
		secure := settings.UseSSL
		if strings.HasPrefix(endpoint, "https://") {
			endpoint = strings.TrimPrefix(endpoint, "https://")
			secure = true
		} else if strings.HasPrefix(endpoint, "http://") {
			endpoint = strings.TrimPrefix(endpoint, "http://")
			secure = false
		}
		if endpoint == "" {
			l.s3Err = errors.New("s3 reference given but no s3 endpoint configured (AWS_ENDPOINT)")
			return
		}
		l.s3, l.s3Err = minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, settings.SessionToken),
			Secure: secure,
		})
	})
	return l.s3, l.s3Err
}

func (l *Loader) loadS3(ctx context.Context, ref string) ([]byte, error) {
	bucket, key, err := ParseS3(ref)
	if err != nil {
		return nil, err
	}
	client, err := l.s3Client()
	if err != nil {
		return nil, err
	}
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read s3 object %s/%s: %w", bucket, key, err)
	}
	l.logger.Debug("Loaded task file from object store",
		zap.String("bucket", bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return data, nil
}

// loadUpload fetches a Label Studio-relative upload path from the configured
// host, falling back to the images mount when no host is configured.
func (l *Loader) loadUpload(ctx context.Context, ref string) ([]byte, error) {
	host, err := l.cfg.LabelStudioURL()
	if err != nil {
		return nil, err
	}
	if host == "" {
		return l.loadLocal(ref)
	}
	return l.loadHTTP(ctx, strings.TrimSuffix(host, "/")+ref)
}

func (l *Loader) loadHTTP(ctx context.Context, fileURL string) ([]byte, error) {
	token, err := l.cfg.LabelStudioAccessToken()
	if err != nil {
		return nil, err
	}

	var data []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusOK:
			data, err = io.ReadAll(resp.Body)
			return err
		case resp.StatusCode >= 500:
			return fmt.Errorf("fetch %s: status %d", fileURL, resp.StatusCode)
		default:
			// 4xx will not get better with retries.
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d", fileURL, resp.StatusCode))
		}
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		return nil, err
	}
	l.logger.Debug("Downloaded task file", zap.String("url", fileURL), zap.Int("bytes", len(data)))
	return data, nil
}
