package transcriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

// ServiceError is returned once a chunk could not be transcribed, either
// because retries ran out or because the failure was not transient.
type ServiceError struct {
	Chunk int
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("transcription service failed on chunk %d: %v", e.Chunk, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx reply from the service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// IsTransient reports whether err is worth retrying: timeouts, dropped
// connections, throttling and server errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusRequestTimeout,
			httpErr.StatusCode == http.StatusTooManyRequests,
			httpErr.StatusCode >= 500:
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}
