package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
)

// APIKeyHeader carries the per-request deployment signature. The backend
// recomputes the same HMAC over the URL path and rejects mismatches.
const APIKeyHeader = "X-Syn-Api-Key"

// Client is the only way this service talks to the attendance backend. It
// signs every request, keeps no cache, and collapses every failure into a
// single *internal.APIError shape.
type Client struct {
	baseURL        string
	sharedSecret   string
	requestTimeout time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
}

type Config struct {
	BaseURL        string
	SharedSecret   string
	RequestTimeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(config.BaseURL, "/"),
		sharedSecret:   config.SharedSecret,
		requestTimeout: timeout,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// Sign computes the hex HMAC-SHA256 of the URL path with the shared secret.
func (c *Client) Sign(path string) string {
	mac := hmac.New(sha256.New, []byte(c.sharedSecret))
	mac.Write([]byte(path))
	return hex.EncodeToString(mac.Sum(nil))
}

// statusResponse is the generic {status, message?} envelope the backend uses
// for auth operations.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (r statusResponse) OK() bool {
	return r.Status == "ok"
}

// do performs one signed round-trip. body is marshaled as JSON when non-nil;
// the response body is decoded into out when out is non-nil. Every failure
// mode returns an *internal.APIError; no raw transport error escapes.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return &internal.APIError{
				Category: internal.CategoryUnknown,
				Message:  "failed to encode request body",
				Cause:    err,
			}
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	ctx, cancel := internal.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return internal.NewNetworkError("failed to build request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.Sign(req.URL.Path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("attendance request failed", "method", method, "path", path, "error", err)
		return internal.NewNetworkError("attendance service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(method, path, resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("attendance response decode failed", "method", method, "path", path, "error", err)
		apiErr := internal.NewAPIError(resp.StatusCode, "malformed response from attendance service")
		apiErr.Category = internal.CategoryUnknown
		apiErr.Cause = err
		return apiErr
	}

	return nil
}

// errorFromResponse converts a non-2xx response into the typed error,
// preferring the backend's own message when the body parses.
func (c *Client) errorFromResponse(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := fmt.Sprintf("attendance service returned status %d", resp.StatusCode)
	var envelope statusResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		message = envelope.Message
	}

	apiErr := internal.NewAPIError(resp.StatusCode, message)
	if len(raw) > 0 {
		apiErr.Details = string(raw)
	}

	c.logger.Warn("attendance request rejected",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"category", apiErr.Category)

	return apiErr
}

// Ping checks backend reachability for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil)
}

// update implements the backend's full-replacement contract for partial
// patches: fetch the current document, shallow-merge the patch over it
// (last-write-wins per field), and PUT the merged document back. Concurrent
// writers are not reconciled.
func (c *Client) update(ctx context.Context, path string, patch map[string]interface{}) error {
	current := map[string]interface{}{}
	if err := c.do(ctx, http.MethodGet, path, nil, &current); err != nil {
		return err
	}

	for k, v := range patch {
		current[k] = v
	}

	return c.do(ctx, http.MethodPut, path, current, nil)
}

func pathEscape(segment string) string {
	return url.PathEscape(segment)
}
