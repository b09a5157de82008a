package intake

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
)

const downloadedName = "downloaded_input"

// DownloadError is returned when a remote source could not be fetched.
type DownloadError struct {
	URL    string
	Status int
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("download %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// IsURL reports whether source is an http or https URL.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads rawURL into dir, named after the last path element of the
// URL, and returns the local path. A body over the intake size limit fails
// with FileTooLargeError and leaves nothing behind.
func Fetch(ctx context.Context, client *http.Client, cfg config.IntakeConfig, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.DownloadTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &DownloadError{URL: rawURL, Status: resp.StatusCode}
	}

	limit := cfg.MaxFileSize()
	if limit > 0 && resp.ContentLength > limit {
		return "", &FileTooLargeError{Path: rawURL, Size: resp.ContentLength, Limit: limit}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	dst := filepath.Join(dir, fileNameFor(u))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	body := io.Reader(resp.Body)
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	if limit > 0 && n > limit {
		os.Remove(dst)
		return "", &FileTooLargeError{Path: rawURL, Size: n, Limit: limit}
	}
	return dst, nil
}

// fileNameFor picks a safe local name from the URL path.
func fileNameFor(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return downloadedName
	}
	return name
}
