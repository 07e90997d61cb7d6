// Package httpclient is the JSON transport shared by every remote gateway.
// The bearer token is read from the TokenSource on each request, never cached.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "punchclock/internal/platform/errors"
	"punchclock/internal/platform/id"
	"punchclock/internal/platform/logging"
	"punchclock/internal/platform/metrics"
)

const maxErrorBody = 64 << 10

// TokenSource is the credential holder consulted at call time.
type TokenSource interface {
	Current() string
	Clear(ctx context.Context)
}

// Doer is what gateways depend on.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	ids     id.Generator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds a client rooted at baseURL. A nil tokens source sends anonymous requests.
func New(baseURL string, httpClient *http.Client, tokens TokenSource, ids id.Generator, m *metrics.Metrics, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if ids == nil {
		ids = id.ULID{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		ids:     ids,
		metrics: m,
		logger:  logger,
	}
}

// Do sends body as JSON and decodes a 2xx response into out when out is non-nil.
// Non-2xx responses come back as *StatusError; network failures wrap ErrTransport.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := c.ids.New()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Current(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, 0)
		c.logger.Debug("http.request.fail", "method", method, "path", path, "request_id", requestID, "err", err)
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(method, resp.StatusCode)
	c.logger.Debug("http.request", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		c.tokens.Clear(ctx)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseStatusError(resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", apperrors.ErrTransport, method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", apperrors.ErrRemote, method, path, err)
	}
	return nil
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("status %d: %s: %s", e.Status, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	case e.Code != "":
		return fmt.Sprintf("status %d: %s", e.Status, e.Code)
	default:
		return fmt.Sprintf("status %d", e.Status)
	}
}

// Unwrap maps the status and body code onto the shared sentinels.
func (e *StatusError) Unwrap() error {
	if e.Code == CodeSessionAlreadyOpen {
		return apperrors.ErrSessionAlreadyOpen
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	default:
		return apperrors.ErrRemote
	}
}

// CodeSessionAlreadyOpen is the body code the server sends when a start collides
// with a session it already holds open.
const CodeSessionAlreadyOpen = "SESSION_ALREADY_OPEN"

// StatusOf reports the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

type errorEnvelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseStatusError accepts {"code","error"|"message"}, {"error":{"code","message"}}
// or any non-JSON text.
func parseStatusError(status int, raw []byte) *StatusError {
	out := &StatusError{Status: status}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return out
	}
	env := errorEnvelope{}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		out.Message = truncate(string(trimmed), 200)
		return out
	}
	out.Code = env.Code
	out.Message = env.Message
	if len(env.Error) > 0 {
		var text string
		if err := json.Unmarshal(env.Error, &text); err == nil {
			if out.Message == "" {
				out.Message = text
			}
		} else {
			nested := nestedError{}
			if err := json.Unmarshal(env.Error, &nested); err == nil {
				if out.Code == "" {
					out.Code = nested.Code
				}
				if out.Message == "" {
					out.Message = nested.Message
				}
			}
		}
	}
	return out
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
