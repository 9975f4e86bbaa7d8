// Package api is the typed client for the Remails REST backend. It is the
// sole network contract of the console core: GET returns the resource or a
// typed error carrying the HTTP status; mutations return the mutated
// resource or an error with the backend's structured body attached.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/remails/console/model"
)

const maxResponseBytes = 10 << 20 // 10MB

// Client talks to one Remails API base URL. Safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	breaker *breaker
}

// NewClient creates a client with a pooled transport and the given request
// timeout. The navigation layer deliberately adds no retries on top: a
// failed fetch ends that navigation attempt.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		breaker: newBreaker(5, 2, 30*time.Second),
	}
}

// BreakerState reports the state of the client's circuit breaker.
func (c *Client) BreakerState() BreakerState {
	return c.breaker.State()
}

// get performs a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, sess *model.Session, path string, query url.Values, out any) error {
	return c.do(ctx, sess, http.MethodGet, path, query, nil, out)
}

// post performs a POST with a JSON body and decodes the response into out
// (out may be nil for responses without a useful body).
func (c *Client) post(ctx context.Context, sess *model.Session, path string, body, out any) error {
	return c.do(ctx, sess, http.MethodPost, path, nil, body, out)
}

// put performs a PUT with a JSON body.
func (c *Client) put(ctx context.Context, sess *model.Session, path string, body, out any) error {
	return c.do(ctx, sess, http.MethodPut, path, nil, body, out)
}

// delete performs a DELETE.
func (c *Client) delete(ctx context.Context, sess *model.Session, path string) error {
	return c.do(ctx, sess, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, sess *model.Session, method, path string, query url.Values, body, out any) error {
	if !c.breaker.allow() {
		return model.NewBackendUnavailableError()
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header = buildHeaders(sess, method)

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.recordFailure()
		if isConnectionError(err) {
			return model.NewBackendUnavailableError()
		}
		if ctx.Err() != nil || isTimeout(err) {
			return model.NewBackendTimeoutError()
		}
		return fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	// The request reached the platform; only 5xx counts against the breaker.
	if resp.StatusCode >= 500 {
		c.breaker.recordFailure()
	} else {
		c.breaker.recordSuccess()
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
	}
	return nil
}

// errorFromResponse converts a non-2xx response into a typed error, pulling
// the message out of the backend's {"error": {"message": ...}} envelope or
// a bare {"message": ...} body when present.
func errorFromResponse(status int, body []byte) *model.ErrorEnvelope {
	var detail map[string]any
	message := ""
	if len(body) > 0 {
		if err := json.Unmarshal(body, &detail); err == nil {
			if inner, ok := detail["error"].(map[string]any); ok {
				if m, ok := inner["message"].(string); ok {
					message = m
				}
			} else if m, ok := detail["message"].(string); ok {
				message = m
			}
		} else {
			detail = nil
		}
	}
	return model.APIErrorFromStatus(status, message, detail)
}

func buildHeaders(sess *model.Session, method string) http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		h.Set("Content-Type", "application/json")
	}
	if sess != nil {
		if sess.Token != "" {
			h.Set("Authorization", "Bearer "+sanitizeHeader(sess.Token))
		}
		h.Set("X-Correlation-Id", sanitizeHeader(sess.CorrelationID))
		h.Set("X-Console-Session", sanitizeHeader(sess.ID))
	}
	return h
}

// sanitizeHeader strips newlines and carriage returns to prevent header
// injection.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
