package session

import (
	"sync"
	"time"

	"github.com/remails/console/internal/history"
	"github.com/remails/console/internal/navigation"
	"github.com/remails/console/internal/state"
)

// App is the live navigation machinery of one console session: its state
// store, history stack and controller. Apps are created on first use and
// evicted after sitting idle.
type App struct {
	Controller *navigation.Controller
	Store      *state.Store
	History    *history.Stack

	lastSeen time.Time
}

// Factory builds a fresh App for a session opened at the given location.
type Factory func(sessionID, location string) *App

// Registry tracks live Apps by session ID.
type Registry struct {
	mu      sync.Mutex
	apps    map[string]*App
	factory Factory
	idleTTL time.Duration
}

// NewRegistry creates a registry that evicts apps idle longer than idleTTL.
func NewRegistry(factory Factory, idleTTL time.Duration) *Registry {
	return &Registry{
		apps:    make(map[string]*App),
		factory: factory,
		idleTTL: idleTTL,
	}
}

// Get returns the session's app, creating one at location if none is live.
// The second return reports whether the app was newly created.
func (r *Registry) Get(sessionID, location string) (*App, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if app, ok := r.apps[sessionID]; ok {
		app.lastSeen = time.Now()
		return app, false
	}

	app := r.factory(sessionID, location)
	app.lastSeen = time.Now()
	r.apps[sessionID] = app
	return app, true
}

// Peek returns the session's app without creating one.
func (r *Registry) Peek(sessionID string) (*App, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[sessionID]
	if ok {
		app.lastSeen = time.Now()
	}
	return app, ok
}

// Drop removes the session's app.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.apps, sessionID)
}

// Sweep evicts apps idle longer than the registry's TTL and returns how
// many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, app := range r.apps {
		if now.Sub(app.lastSeen) > r.idleTTL {
			delete(r.apps, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live apps.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apps)
}
