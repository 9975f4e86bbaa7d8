// Package integration spins up a fully wired console server over a mock
// Remails platform and exercises it through the same HTTP surface the
// browser shell uses.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/remails/console/internal/api"
	"github.com/remails/console/internal/config"
	"github.com/remails/console/internal/history"
	"github.com/remails/console/internal/journal"
	"github.com/remails/console/internal/navigation"
	"github.com/remails/console/internal/observability"
	"github.com/remails/console/internal/route"
	"github.com/remails/console/internal/router"
	"github.com/remails/console/internal/session"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/internal/transport"
)

// TestHarness encapsulates a running console instance with its mock
// platform and in-memory stores.
type TestHarness struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client

	Backend  *MockRemails
	Registry *session.Registry
	Resume   session.ResumeCache
	Journal  journal.Store
	Config   *config.Config
}

// HarnessOption configures the test harness.
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	journal   bool
	resumeTTL time.Duration
}

// WithJournal enables the in-memory navigation journal.
func WithJournal() HarnessOption {
	return func(c *harnessConfig) { c.journal = true }
}

// WithResumeTTL overrides the resume snapshot lifetime.
func WithResumeTTL(d time.Duration) HarnessOption {
	return func(c *harnessConfig) { c.resumeTTL = d }
}

// NewTestHarness creates and starts a full console instance. The server and
// its mock platform are cleaned up when the test completes.
func NewTestHarness(t *testing.T, opts ...HarnessOption) *TestHarness {
	t.Helper()

	hc := &harnessConfig{resumeTTL: time.Hour}
	for _, opt := range opts {
		opt(hc)
	}

	backend := NewMockRemails(t)

	cfg := config.Defaults()
	cfg.API.BaseURL = backend.URL()
	cfg.Sessions.Resume.DefaultTTL = hc.resumeTTL
	cfg.Observability.Metrics.Enabled = false

	table := route.DefaultTable()
	client := api.NewClient(backend.URL(), 2*time.Second)
	resume := session.NewMemoryResumeCache()
	metrics := observability.InitMetrics(prometheus.NewRegistry())

	var js journal.Store
	if hc.journal {
		js = journal.NewMemoryStore()
	}

	factory := func(sessionID, location string) *session.App {
		st := state.NewStore()
		hist := history.NewStack()
		rt := router.New(table, location)
		loaders := navigation.NewLoaders(client, st, rt, zap.NewNop())

		navOpts := []navigation.Option{
			navigation.WithMiddleware(loaders.Pipeline()...),
			navigation.WithMetrics(metrics),
		}
		if js != nil {
			navOpts = append(navOpts, navigation.WithJournal(js))
		}
		return &session.App{
			Controller: navigation.NewController(rt, st, hist, navOpts...),
			Store:      st,
			History:    hist,
		}
	}
	registry := session.NewRegistry(factory, cfg.Sessions.IdleTTL)

	handler := transport.NewRouter(transport.Dependencies{
		Config:   cfg,
		Registry: registry,
		Resume:   resume,
		Table:    table,
		API:      client,
		Journal:  js,
		Metrics:  metrics,
		Checks: observability.ReadinessChecks{
			RouteTableLoaded: func() bool { return len(table.Names()) > 0 },
		},
		Logger: zap.NewNop(),
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &TestHarness{
		t:        t,
		server:   server,
		client:   server.Client(),
		Backend:  backend,
		Registry: registry,
		Resume:   resume,
		Journal:  js,
		Config:   cfg,
	}
}

// navResult mirrors the committed-navigation response body.
type navResult struct {
	Name     string            `json:"name"`
	Params   map[string]string `json:"params"`
	FullPath string            `json:"full_path"`
	History  historyPos        `json:"history"`
}

// stateResult mirrors the full-state response body.
type stateResult struct {
	State   state.ApplicationState `json:"state"`
	History historyPos             `json:"history"`
}

type historyPos struct {
	Length int `json:"length"`
	Index  int `json:"index"`
}

// GET issues a GET request with the session and token headers set.
func (h *TestHarness) GET(path, sessionID, token string) *http.Response {
	return h.do(http.MethodGet, path, nil, sessionID, token)
}

// POST issues a POST request with a JSON body and the session and token
// headers set.
func (h *TestHarness) POST(path string, body any, sessionID, token string) *http.Response {
	return h.do(http.MethodPost, path, body, sessionID, token)
}

func (h *TestHarness) do(method, path string, body any, sessionID, token string) *http.Response {
	h.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, h.server.URL+path, rd)
	if err != nil {
		h.t.Fatalf("build request: %v", err)
	}
	if sessionID != "" {
		req.Header.Set("X-Console-Session", sessionID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// ParseJSON decodes and closes a response body.
func (h *TestHarness) ParseJSON(resp *http.Response, target any) {
	h.t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		h.t.Fatalf("decode response body: %v", err)
	}
}

// Login performs a real login round trip and returns the platform token.
func (h *TestHarness) Login(sessionID string) string {
	h.t.Helper()
	resp := h.POST("/ui/login", map[string]string{
		"email":    TestEmail,
		"password": TestPassword,
	}, sessionID, "")
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("login status = %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	h.ParseJSON(resp, &result)
	if result.Token == "" {
		h.t.Fatal("login returned no token")
	}
	return result.Token
}

// StartSession opens a session at the given browser location and returns
// the initial state.
func (h *TestHarness) StartSession(sessionID, token, location string) stateResult {
	h.t.Helper()
	resp := h.POST("/ui/session/start", map[string]string{"location": location}, sessionID, token)
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("session start status = %d", resp.StatusCode)
	}
	var result stateResult
	h.ParseJSON(resp, &result)
	return result
}

// Navigate requests a named-route transition and returns the committed
// result.
func (h *TestHarness) Navigate(sessionID, token, name string, params map[string]string) navResult {
	h.t.Helper()
	resp := h.POST("/ui/navigate", map[string]any{"name": name, "params": params}, sessionID, token)
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("navigate status = %d", resp.StatusCode)
	}
	var result navResult
	h.ParseJSON(resp, &result)
	return result
}

// Pop moves the history cursor back or forward and returns the committed
// result.
func (h *TestHarness) Pop(sessionID, token, direction string) navResult {
	h.t.Helper()
	resp := h.POST("/ui/history/pop", map[string]string{"direction": direction}, sessionID, token)
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("history pop status = %d", resp.StatusCode)
	}
	var result navResult
	h.ParseJSON(resp, &result)
	return result
}

// State fetches the session's current application state.
func (h *TestHarness) State(sessionID, token string) stateResult {
	h.t.Helper()
	resp := h.GET("/ui/state", sessionID, token)
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("state status = %d", resp.StatusCode)
	}
	var result stateResult
	h.ParseJSON(resp, &result)
	return result
}
