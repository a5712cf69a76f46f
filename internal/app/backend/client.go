// Package backend is the HTTP and WebSocket client for the remote
// EduSphere API that the service wrappers call in remote mode.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/telemetry"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client calls the remote API. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	wsBase *url.URL
	http   *http.Client
	dialer *websocket.Dialer
	log    *zap.Logger
}

// Config describes the remote endpoints.
type Config struct {
	BaseURL string        // e.g. https://api.edusphere.example
	WSURL   string        // e.g. wss://api.edusphere.example; derived from BaseURL when empty
	Timeout time.Duration // per-request timeout for JSON calls
	// Transport overrides the HTTP transport (tests). It is wrapped for tracing.
	Transport http.RoundTripper
}

// New builds a Client. BaseURL must be absolute http(s).
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q", cfg.BaseURL)
	}
	wsRaw := cfg.WSURL
	if wsRaw == "" {
		ws := *base
		ws.Scheme = map[string]string{"http": "ws", "https": "wss"}[base.Scheme]
		wsRaw = ws.String()
	}
	wsBase, err := url.Parse(strings.TrimRight(wsRaw, "/"))
	if err != nil || (wsBase.Scheme != "ws" && wsBase.Scheme != "wss") {
		return nil, fmt.Errorf("backend: invalid websocket url %q", wsRaw)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		base:   base,
		wsBase: wsBase,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: telemetry.Transport(cfg.Transport),
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.Timeout,
			Proxy:            http.ProxyFromEnvironment,
		},
		log: logger,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, token, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, token, path, q, nil, out)
}

// Post sends in as JSON and decodes the response into out (which may be nil).
func (c *Client) Post(ctx context.Context, token, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, token, path, nil, in, out)
}

// Put sends in as JSON and decodes the response into out (which may be nil).
func (c *Client) Put(ctx context.Context, token, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, token, path, nil, in, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, token, path string) error {
	return c.do(ctx, http.MethodDelete, token, path, nil, nil, nil)
}

// PostBytes uploads a raw body (screenshots) and decodes the JSON response.
func (c *Client) PostBytes(ctx context.Context, token, path, contentType string, body []byte, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, token, path, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.send(req, out)
}

// GetBytes downloads a raw body and its content type.
func (c *Client) GetBytes(ctx context.Context, token, path string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, token, path, nil, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", c.transportError(req, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, "", c.statusError(req, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindUnavailable, err, "backend: read body")
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Dial opens a WebSocket to path on the websocket base URL.
func (c *Client) Dial(ctx context.Context, token, path string) (*websocket.Conn, error) {
	u := *c.wsBase
	u.Path = strings.TrimRight(c.wsBase.Path, "/") + path
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := c.dialer.DialContext(ctx, u.String(), h)
	if err != nil {
		if resp != nil {
			kind := apperr.KindForStatus(resp.StatusCode)
			resp.Body.Close()
			return nil, apperr.Wrap(kind, err, "backend: websocket handshake refused")
		}
		c.log.Warn("backend websocket dial failed", zap.String("url", u.String()), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "backend: websocket unreachable")
	}
	return conn, nil
}

// Ping checks that the backend answers GET /api/health.
func (c *Client) Ping(ctx context.Context) error {
	return c.Get(ctx, "", "/api/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, token, path string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return apperr.Wrap(apperr.KindInvalidInput, err, "backend: encode request")
		}
		body = bytes.NewReader(buf)
	}
	req, err := c.newRequest(ctx, method, token, path, q, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, token, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "backend: build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(req, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode/100 != 2 {
		return c.statusError(req, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindUnavailable, err, "backend: malformed response")
	}
	return nil
}

func (c *Client) transportError(req *http.Request, err error) error {
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return apperr.Wrap(apperr.KindUnavailable, ctxErr, "backend: request canceled")
	}
	c.log.Warn("backend unreachable",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(err))
	return apperr.Wrap(apperr.KindUnavailable, err, "backend: unreachable")
}

// errorBody is the backend's error envelope. Both the nested and the flat
// shapes are accepted.
type errorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) statusError(req *http.Request, resp *http.Response) error {
	kind := apperr.KindForStatus(resp.StatusCode)
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := ""
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Error != nil {
			msg = eb.Error.Message
		}
		if msg == "" {
			msg = eb.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	level := c.log.Warn
	if kind == apperr.KindUnknown {
		level = c.log.Error
	}
	level("backend call failed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("kind", string(kind)),
		zap.String("message", msg))

	return apperr.Error{Kind: kind, Message: msg, Err: &StatusError{Code: resp.StatusCode}}
}

// StatusError records the HTTP status of a failed call.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend status %d", e.Code)
}

// PathEscape escapes one path segment.
func PathEscape(s string) string { return url.PathEscape(s) }
