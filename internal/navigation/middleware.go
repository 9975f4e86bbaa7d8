package navigation

import (
	"context"

	"github.com/remails/console/model"
)

// Navigation is the ephemeral record passed through the middleware chain
// for a single transition. To may be replaced by a redirecting middleware;
// later middleware in the chain run against the replacement target.
type Navigation struct {
	From model.RouterState
	To   model.FullRouterState

	// Pop is true when the transition replays a history entry instead of
	// creating a new one.
	Pop bool
}

// Outcome is the explicit result of a middleware step. A middleware either
// lets the navigation continue to its current target or redirects it to a
// different one. There is no implicit "fall through" result.
type Outcome struct {
	redirect *model.FullRouterState
}

// Continue lets the navigation proceed to its current target.
func Continue() Outcome {
	return Outcome{}
}

// RedirectTo replaces the navigation target. The remaining middleware run
// against the new target and the original one is never committed.
func RedirectTo(target model.FullRouterState) Outcome {
	return Outcome{redirect: &target}
}

// Redirect reports whether the outcome redirects, and to where.
func (o Outcome) Redirect() (model.FullRouterState, bool) {
	if o.redirect == nil {
		return model.FullRouterState{}, false
	}
	return *o.redirect, true
}

// Middleware is one step of the navigation pipeline. Steps run sequentially
// in registration order; an error aborts the chain and the controller falls
// back to the not-found route.
type Middleware interface {
	// Name identifies the middleware in logs and metrics.
	Name() string

	// Handle inspects the pending navigation, optionally loading data into
	// the application state, and decides whether to continue or redirect.
	Handle(ctx context.Context, nav *Navigation) (Outcome, error)
}

// Func adapts a plain function to the Middleware interface.
type Func struct {
	ID string
	Fn func(ctx context.Context, nav *Navigation) (Outcome, error)
}

func (f Func) Name() string { return f.ID }

func (f Func) Handle(ctx context.Context, nav *Navigation) (Outcome, error) {
	return f.Fn(ctx, nav)
}
