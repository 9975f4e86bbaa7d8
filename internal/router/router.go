// Package router composes the route table's matcher and builder behind a
// small interface and derives the initial router state from the location the
// console was opened at.
package router

import (
	"github.com/remails/console/internal/route"
	"github.com/remails/console/model"
)

// Router resolves locations to router states and route names back to
// canonical URLs. It is pure with respect to its inputs aside from reading
// the initial location once at construction time.
type Router struct {
	table   *route.Table
	initial model.FullRouterState
}

// New creates a Router over the given table with its initial state computed
// from location. An empty location falls back to the home route; an
// unmatched one to the not-found route.
func New(table *route.Table, location string) *Router {
	r := &Router{table: table}
	r.initial = r.stateFor(location)
	return r
}

// Match resolves a concrete path (plus optional query string) to a
// RouterState.
func (r *Router) Match(pathAndQuery string) (model.RouterState, error) {
	return r.table.Match(pathAndQuery)
}

// Navigate resolves a route name and parameter set to a FullRouterState
// with its canonical URL.
func (r *Router) Navigate(name string, params map[string]string) (model.FullRouterState, error) {
	return r.table.Build(name, params)
}

// InitialState returns the state derived from the startup location.
func (r *Router) InitialState() model.FullRouterState {
	return r.initial
}

// NotFoundState returns the built not-found route. The not-found route takes
// no parameters, so building it cannot fail.
func (r *Router) NotFoundState() model.FullRouterState {
	st, err := r.table.Build(route.NameNotFound, nil)
	if err != nil {
		panic("router: route table has no not-found route: " + err.Error())
	}
	return st
}

// TableRef exposes the underlying route table, for introspection endpoints.
func (r *Router) TableRef() *route.Table {
	return r.table
}

func (r *Router) stateFor(location string) model.FullRouterState {
	if location == "" {
		location = "/"
	}
	matched, err := r.table.Match(location)
	if err != nil {
		return r.NotFoundState()
	}
	// Rebuild to get the canonical full path for the matched state.
	built, err := r.table.Build(matched.Name, matched.Params)
	if err != nil {
		return r.NotFoundState()
	}
	return built
}
