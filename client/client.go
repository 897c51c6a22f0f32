package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// RequestError is the uniform failure value for backend calls. StatusCode is
// zero when the transport itself failed.
type RequestError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether a call failed because it was superseded by a
// newer call under the same key. Cancellations are not user-visible errors.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound
}

// Client is the single chokepoint for talking to the backend. It builds URLs,
// serializes bodies, unwraps error payloads and holds the in-flight registry
// for keyed cancellation.
type Client struct {
	baseURL  string
	http     *http.Client
	inflight *cancelRegistry
	logger   *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 2 * time.Minute},
		inflight: newCancelRegistry(),
		logger:   logger,
	}
}

// Call issues a request with an optional JSON body and decodes the JSON
// response into out. There are no retries, failures are single-shot.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Message: "failed to encode request body", Err: err}
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}

	return c.do(ctx, method, path, reqBody, contentType, out)
}

// CallKeyed issues a request under a logical key. Starting a new call under a
// key cancels the one still in flight, so at most one request per key is ever
// live. The superseded call fails with a cancellation, see IsCancelled.
func (c *Client) CallKeyed(ctx context.Context, key, method, path string, body, out any) error {
	ctx, release := c.inflight.register(ctx, key)
	defer release()

	return c.Call(ctx, method, path, body, out)
}

// upload posts a multipart form with a single file part and any extra fields.
// The multipart writer supplies the content type so the boundary matches.
func (c *Client) upload(ctx context.Context, path, fileField, filename string, file io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		return &RequestError{Message: "failed to build multipart body", Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &RequestError{Message: "failed to read upload", Err: err}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return &RequestError{Message: "failed to build multipart body", Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return &RequestError{Message: "failed to build multipart body", Err: err}
	}

	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Message: "failed to create request", Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if IsCancelled(err) {
			c.logger.Debug("request superseded", slog.String("path", path), slog.String("requestid", requestID))
			return &RequestError{Message: "request cancelled", Err: err}
		}
		c.logger.Error("request failed", slog.String("path", path), slog.String("requestid", requestID), slog.String("error", err.Error()))
		return &RequestError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Message: "failed to read response", Err: err}
	}
	c.logger.Debug("request served", slog.String("method", method), slog.String("path", path),
		slog.String("requestid", requestID), slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var payload struct {
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(data, &payload); jsonErr == nil && payload.Message != "" {
			msg = payload.Message
		}
		return &RequestError{Message: msg, StatusCode: resp.StatusCode}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Message: "failed to decode response", Err: err}
	}

	return nil
}
