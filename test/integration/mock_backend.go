package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/remails/console/model"
)

// Credentials the mock platform accepts.
const (
	TestEmail    = "admin@remails.test"
	TestPassword = "hunter2"
	TestToken    = "tok-integration"
)

// MockRemails simulates the slice of the Remails platform API the console
// talks to. Fixture data is one "acme" organization with a project, a
// stream, messages, and a domain; a second "beta" organization is empty.
// Endpoints record how often they were hit and can be switched into a
// failure mode to simulate an outage.
type MockRemails struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	failWith int
}

// NewMockRemails starts the mock platform. The server is closed when the
// test completes.
func NewMockRemails(t *testing.T) *MockRemails {
	t.Helper()
	m := &MockRemails{t: t, hits: make(map[string]int)}
	m.server = httptest.NewServer(m.routes())
	t.Cleanup(m.server.Close)
	return m
}

// URL returns the mock platform's base URL.
func (m *MockRemails) URL() string { return m.server.URL }

// FailWith makes every authenticated endpoint return the given status until
// Recover is called.
func (m *MockRemails) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = status
}

// Recover ends a failure mode started with FailWith.
func (m *MockRemails) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = 0
}

// Hits returns how many times the given path was requested.
func (m *MockRemails) Hits(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

func (m *MockRemails) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		m.record(r)
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != TestEmail || req.Password != TestPassword {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeBody(w, map[string]string{"token": TestToken})
	})

	mux.HandleFunc("POST /api/logout", m.authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("GET /api/whoami", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, model.User{ID: "u1", Email: TestEmail, Name: "Admin"})
	}))
	mux.HandleFunc("GET /api/config", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, model.ServerConfig{MaxProjects: 10, SupportEmail: "help@remails.test"})
	}))

	mux.HandleFunc("GET /api/organizations", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, []model.Organization{
			{ID: "acme", Name: "Acme", Plan: "pro"},
			{ID: "beta", Name: "Beta", Plan: "free"},
		})
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, []model.Project{{ID: "p1", OrgID: "acme", Name: "Checkout"}})
	}))
	mux.HandleFunc("GET /api/organizations/beta/projects", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, []model.Project{})
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects/p1", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, model.Project{ID: "p1", OrgID: "acme", Name: "Checkout"})
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects/p1/streams", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, []model.Stream{
			{ID: "st1", ProjectID: "p1", Name: "receipts", Kind: "transactional", Status: "active"},
		})
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects/p1/streams/st1", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, model.Stream{ID: "st1", ProjectID: "p1", Name: "receipts", Kind: "transactional", Status: "active"})
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects/p1/streams/st1/messages", m.authed(func(w http.ResponseWriter, r *http.Request) {
		messages := []model.Message{
			{ID: "m2", StreamID: "st1", Subject: "Receipt #2", Status: "delivered", SubmittedAt: time.Now().UTC()},
			{ID: "m1", StreamID: "st1", Subject: "Receipt #1", Status: "bounced", SubmittedAt: time.Now().UTC().Add(-time.Hour)},
		}
		if status := r.URL.Query().Get("status"); status != "" {
			filtered := messages[:0]
			for _, msg := range messages {
				if msg.Status == status {
					filtered = append(filtered, msg)
				}
			}
			messages = filtered
		}
		writeBody(w, messages)
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects/p1/streams/st1/messages/m2", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, model.Message{ID: "m2", StreamID: "st1", Subject: "Receipt #2", Status: "delivered"})
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects/p1/streams/st1/credentials", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, []model.Credential{{ID: "c1", StreamID: "st1", Name: "smtp-main", Username: "acme.st1"}})
	}))
	mux.HandleFunc("GET /api/organizations/acme/projects/p1/domains", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, []model.Domain{{ID: "d1", ProjectID: "p1", Name: "mail.acme.test", Verified: true}})
	}))
	mux.HandleFunc("GET /api/organizations/acme/api-keys", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, []model.APIKey{{ID: "k1", Name: "deploy", Prefix: "rk_live_1a2b"}})
	}))
	mux.HandleFunc("GET /api/organizations/acme/subscription", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, model.Subscription{
			Plan:   "pro",
			Status: "active",
			Quota:  model.Quota{MonthlyLimit: 100000, Used: 4521},
		})
	}))

	return mux
}

// authed wraps a handler with hit recording, the failure mode, and the
// bearer token check.
func (m *MockRemails) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.record(r)

		m.mu.Lock()
		failWith := m.failWith
		m.mu.Unlock()
		if failWith != 0 {
			writeError(w, failWith, "simulated outage")
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+TestToken {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (m *MockRemails) record(r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[r.URL.Path]++
}

func writeBody(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg},
	})
}
