package httpclient

import (
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps how much of a response body is read into memory.
const MaxBodyBytes = 4 << 20

// StatusError describes a non-2xx answer.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// ReadBody reads and closes resp.Body, up to MaxBodyBytes.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// IsSuccess reports whether code is 2xx.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
