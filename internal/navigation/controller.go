package navigation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/remails/console/internal/history"
	"github.com/remails/console/internal/journal"
	"github.com/remails/console/internal/observability"
	"github.com/remails/console/internal/route"
	"github.com/remails/console/internal/router"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/model"
)

// Controller drives all route transitions for one console session. Every
// transition, whether requested by a link, a redirect, or a history pop,
// goes through the same pipeline: resolve target, run middleware, commit,
// record history.
//
// At most one navigation is in flight at a time. A request that arrives
// while another is running is rejected with NAVIGATION_IN_FLIGHT rather
// than queued; the caller retries once the current transition settles.
type Controller struct {
	router     *router.Router
	store      *state.Store
	history    *history.Stack
	middleware []Middleware
	journal    journal.Store
	metrics    *observability.Metrics
	logger     *zap.Logger

	busy sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithMiddleware appends middleware to the pipeline in execution order.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Controller) { c.middleware = append(c.middleware, mw...) }
}

// WithJournal enables persistent recording of committed navigations.
func WithJournal(j journal.Store) Option {
	return func(c *Controller) { c.journal = j }
}

// WithMetrics enables navigation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController assembles a controller over its collaborators.
func NewController(rt *router.Router, st *state.Store, hs *history.Stack, opts ...Option) *Controller {
	c := &Controller{
		router:  rt,
		store:   st,
		history: hs,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start performs the initial transition for a fresh session. It runs the
// full pipeline against the router's initial state and seeds the history
// stack with the committed entry instead of pushing on top of it.
func (c *Controller) Start(ctx context.Context) (model.FullRouterState, error) {
	initial := c.router.InitialState()
	committed, err := c.transition(ctx, initial.Name, initial.Params, modeReplace)
	if err != nil {
		return model.FullRouterState{}, err
	}
	return committed, nil
}

// Navigate requests a transition to the named route. It returns the
// committed target, which may differ from the requested one when a
// middleware redirected or the pipeline fell back to not-found.
func (c *Controller) Navigate(ctx context.Context, name string, params map[string]string) (model.FullRouterState, error) {
	return c.transition(ctx, name, params, modePush)
}

// NavigateToLocation resolves a raw path-and-query (a pasted URL, a deep
// link) and runs the normal pipeline against the result. An unmatched
// location navigates to not-found rather than failing.
func (c *Controller) NavigateToLocation(ctx context.Context, location string) (model.FullRouterState, error) {
	rs, err := c.router.Match(location)
	if err != nil {
		nf := c.router.NotFoundState()
		return c.transition(ctx, nf.Name, nf.Params, modePush)
	}
	return c.transition(ctx, rs.Name, rs.Params, modePush)
}

// HandlePop replays a history entry after a back or forward movement. The
// entry goes through the same middleware pipeline as a fresh navigation so
// that auth and data loading are re-applied, but no new history entry is
// pushed. A nil entry (history exhausted upstream) falls back to the
// router's initial state.
func (c *Controller) HandlePop(ctx context.Context, entry *model.HistoryEntry) (model.FullRouterState, error) {
	target := c.router.InitialState().RouterState
	if entry != nil {
		target = entry.RouterState
	}
	return c.transition(ctx, target.Name, target.Params, modePop)
}

type transitionMode int

const (
	modePush transitionMode = iota
	modeReplace
	modePop
)

func (c *Controller) transition(ctxIn context.Context, name string, params map[string]string, mode transitionMode) (model.FullRouterState, error) {
	if !c.busy.TryLock() {
		c.logger.Debug("navigation rejected, another is in flight",
			zap.String("route", name))
		if c.metrics != nil {
			c.metrics.RecordNavigationRejected()
		}
		return model.FullRouterState{}, model.NewNavigationInFlightError()
	}
	defer c.busy.Unlock()

	started := time.Now()
	from := c.store.State().Route

	target, err := c.router.Navigate(name, params)
	if err != nil {
		// Unknown route name or bad params: the transition itself still
		// succeeds, it just lands on not-found.
		c.logger.Warn("route resolution failed, falling back to not-found",
			zap.String("route", name), zap.Error(err))
		target = c.router.NotFoundState()
	}

	// Publish the tentative target so the shell can render a loading
	// indicator before the middleware pipeline settles.
	c.store.Dispatch(state.SetNextRoute{Next: &target})
	c.store.Dispatch(state.SetLoading{Loading: true})

	nav := &Navigation{From: from, To: target, Pop: mode == modePop}
	result := c.runPipeline(ctxIn, nav)

	entry := model.HistoryEntry{FullPath: nav.To.FullPath, RouterState: nav.To.RouterState.Clone()}
	switch mode {
	case modePush:
		c.history.Push(entry)
	case modeReplace:
		c.history.Replace(entry)
	case modePop:
		// The stack cursor already moved; nothing to record.
	}

	c.store.Dispatch(state.CommitRoute{Route: nav.To.RouterState})
	c.store.Dispatch(state.SetNextRoute{Next: nil})
	c.store.Dispatch(state.SetLoading{Loading: false})

	elapsed := time.Since(started)
	c.logger.Info("navigation committed",
		zap.String("from", from.Name),
		zap.String("requested", name),
		zap.String("committed", nav.To.Name),
		zap.String("path", nav.To.FullPath),
		zap.String("result", result),
		zap.Duration("duration", elapsed))
	if c.metrics != nil {
		c.metrics.RecordNavigation(nav.To.Name, result, elapsed)
	}

	c.record(ctxIn, from, nav.To, name, result, elapsed)

	return nav.To, nil
}

// runPipeline executes the middleware chain against nav, mutating nav.To on
// redirects and on failure. It returns a result label for logs and metrics.
func (c *Controller) runPipeline(ctx context.Context, nav *Navigation) string {
	result := "committed"
	for _, mw := range c.middleware {
		outcome, err := mw.Handle(ctx, nav)
		if err != nil {
			c.logger.Warn("navigation middleware failed",
				zap.String("middleware", mw.Name()),
				zap.String("route", nav.To.Name),
				zap.Error(err))
			nav.To = c.router.NotFoundState()
			return "failed"
		}
		if redirect, ok := outcome.Redirect(); ok {
			c.logger.Debug("navigation redirected",
				zap.String("middleware", mw.Name()),
				zap.String("from", nav.To.Name),
				zap.String("to", redirect.Name))
			nav.To = redirect
			result = "redirected"
		}
	}
	return result
}

// record appends the committed transition to the journal, best effort.
func (c *Controller) record(ctx context.Context, from model.RouterState, to model.FullRouterState, requested, result string, elapsed time.Duration) {
	if c.journal == nil {
		return
	}
	entry := journal.Entry{
		SessionID: sessionID(ctx),
		FromRoute: from.Name,
		Requested: requested,
		ToRoute:   to.Name,
		FullPath:  to.FullPath,
		Result:    result,
		Duration:  elapsed,
		At:        time.Now().UTC(),
	}
	if err := c.journal.Append(ctx, entry); err != nil {
		c.logger.Warn("journal append failed", zap.Error(err))
	}
}

func sessionID(ctx context.Context) string {
	if sess := model.SessionFrom(ctx); sess != nil {
		return sess.ID
	}
	return ""
}

// Table exposes the controller's route table for introspection endpoints.
func (c *Controller) Table() *route.Table {
	return c.router.TableRef()
}
