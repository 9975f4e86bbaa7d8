package navigation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/remails/console/internal/api"
	"github.com/remails/console/internal/route"
	"github.com/remails/console/internal/router"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/model"
)

// Loaders builds the standard middleware pipeline: session check, then
// organization context, then per-route data loading. Each loader dispatches
// the data it fetched into the application state so the shell can render the
// committed route without further round trips.
type Loaders struct {
	api    *api.Client
	store  *state.Store
	router *router.Router
	logger *zap.Logger
}

// NewLoaders wires the loaders over their collaborators.
func NewLoaders(client *api.Client, st *state.Store, rt *router.Router, logger *zap.Logger) *Loaders {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loaders{api: client, store: st, router: rt, logger: logger}
}

// Pipeline returns the middleware chain in execution order.
func (l *Loaders) Pipeline() []Middleware {
	return []Middleware{
		l.Session(),
		l.Organizations(),
		l.RouteData(),
	}
}

// public reports whether a route is reachable without a session.
func public(name string) bool {
	return name == route.NameLogin || name == route.NameNotFound
}

// Session verifies the caller's session before any protected route commits.
// A missing or rejected session redirects to login, carrying the originally
// requested path in the `redirect` query parameter so login can bounce back.
func (l *Loaders) Session() Middleware {
	return Func{ID: "session", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		if public(nav.To.Name) {
			return Continue(), nil
		}

		sess := model.SessionFrom(ctx)
		if sess == nil || sess.Token == "" {
			return l.redirectToLogin(nav)
		}

		user, err := l.api.WhoAmI(ctx, sess)
		if err != nil {
			var envelope *model.ErrorEnvelope
			if errors.As(err, &envelope) && envelope.IsAuth() {
				l.logger.Debug("session rejected by backend",
					zap.String("route", nav.To.Name),
					zap.String("code", envelope.Code))
				return l.redirectToLogin(nav)
			}
			return Continue(), fmt.Errorf("session check: %w", err)
		}
		l.store.Dispatch(state.SetUser{User: &user})

		if l.store.State().Config == nil {
			cfg, err := l.api.ServerConfig(ctx, sess)
			if err != nil {
				// Server config is advisory; the route can still commit.
				l.logger.Warn("server config fetch failed", zap.Error(err))
			} else {
				l.store.Dispatch(state.SetServerConfig{Config: &cfg})
			}
		}
		return Continue(), nil
	}}
}

// Organizations loads the caller's organizations, resolves the {org_id}
// parameter against them, and bounces the bare home route to the default
// organization's dashboard.
func (l *Loaders) Organizations() Middleware {
	return Func{ID: "organizations", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		if public(nav.To.Name) {
			return Continue(), nil
		}
		sess := model.SessionFrom(ctx)
		if sess == nil {
			return Continue(), nil
		}

		orgs := l.store.State().Organizations
		if len(orgs) == 0 {
			var err error
			orgs, err = l.api.ListOrganizations(ctx, sess)
			if err != nil {
				return Continue(), fmt.Errorf("list organizations: %w", err)
			}
			l.store.Dispatch(state.SetOrganizations{Organizations: orgs})
		}

		if nav.To.Name == route.NameHome {
			if len(orgs) == 0 {
				return Continue(), nil
			}
			target, err := l.router.Navigate(route.NameOrg, map[string]string{"org_id": orgs[0].ID})
			if err != nil {
				return Continue(), fmt.Errorf("build default org route: %w", err)
			}
			return RedirectTo(target), nil
		}

		orgID := nav.To.Param("org_id")
		if orgID == "" {
			return Continue(), nil
		}
		for i := range orgs {
			if orgs[i].ID == orgID {
				l.store.Dispatch(state.SelectOrganization{Organization: &orgs[i]})
				return Continue(), nil
			}
		}
		return Continue(), model.NewNotFoundError(fmt.Sprintf("organization %q not found", orgID))
	}}
}

// RouteData loads the data each route renders from.
func (l *Loaders) RouteData() Middleware {
	return Func{ID: "route_data", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		if public(nav.To.Name) {
			return Continue(), nil
		}
		sess := model.SessionFrom(ctx)
		if sess == nil {
			return Continue(), nil
		}
		if err := l.loadRoute(ctx, sess, nav.To); err != nil {
			return Continue(), err
		}
		return Continue(), nil
	}}
}

func (l *Loaders) loadRoute(ctx context.Context, sess *model.Session, to model.FullRouterState) error {
	orgID := to.Param("org_id")
	projID := to.Param("proj_id")
	streamID := to.Param("stream_id")

	switch to.Name {
	case route.NameOrg, route.NameProjects:
		projects, err := l.api.ListProjects(ctx, sess, orgID)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		l.store.Dispatch(state.SetProjects{Projects: projects})

	case route.NameProject, route.NameProjectSettings:
		project, err := l.api.GetProject(ctx, sess, orgID, projID)
		if err != nil {
			return fmt.Errorf("get project: %w", err)
		}
		l.store.Dispatch(state.SelectProject{Project: &project})

	case route.NameStreams:
		if err := l.selectProject(ctx, sess, orgID, projID); err != nil {
			return err
		}
		streams, err := l.api.ListStreams(ctx, sess, orgID, projID)
		if err != nil {
			return fmt.Errorf("list streams: %w", err)
		}
		l.store.Dispatch(state.SetStreams{Streams: streams})

	case route.NameStream:
		stream, err := l.api.GetStream(ctx, sess, orgID, projID, streamID)
		if err != nil {
			return fmt.Errorf("get stream: %w", err)
		}
		l.store.Dispatch(state.SelectStream{Stream: &stream})

	case route.NameMessages:
		filter := messageFilter(to.Params)
		messages, err := l.api.ListMessages(ctx, sess, orgID, projID, streamID, filter)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		l.store.Dispatch(state.SetMessages{Messages: messages})

	case route.NameMessage:
		message, err := l.api.GetMessage(ctx, sess, orgID, projID, streamID, to.Param("message_id"))
		if err != nil {
			return fmt.Errorf("get message: %w", err)
		}
		l.store.Dispatch(state.SelectMessage{Message: &message})

	case route.NameDomains:
		domains, err := l.api.ListDomains(ctx, sess, orgID, projID)
		if err != nil {
			return fmt.Errorf("list domains: %w", err)
		}
		l.store.Dispatch(state.SetDomains{Domains: domains})

	case route.NameDomain:
		domain, err := l.api.GetDomain(ctx, sess, orgID, projID, to.Param("domain_id"))
		if err != nil {
			return fmt.Errorf("get domain: %w", err)
		}
		l.store.Dispatch(state.SelectDomain{Domain: &domain})

	case route.NameCredentials, route.NameCredential:
		credentials, err := l.api.ListCredentials(ctx, sess, orgID, projID, streamID)
		if err != nil {
			return fmt.Errorf("list credentials: %w", err)
		}
		l.store.Dispatch(state.SetCredentials{Credentials: credentials})

	case route.NameAPIKeys:
		keys, err := l.api.ListAPIKeys(ctx, sess, orgID)
		if err != nil {
			return fmt.Errorf("list api keys: %w", err)
		}
		l.store.Dispatch(state.SetAPIKeys{Keys: keys})

	case route.NameBilling:
		sub, err := l.api.GetSubscription(ctx, sess, orgID)
		if err != nil {
			return fmt.Errorf("get subscription: %w", err)
		}
		l.store.Dispatch(state.SetSubscription{Subscription: &sub})

	case route.NameHome, route.NameSettings, route.NameNotFound:
		// Home only commits when the user has no organizations yet.
	}
	return nil
}

func (l *Loaders) selectProject(ctx context.Context, sess *model.Session, orgID, projID string) error {
	if cur := l.store.State().Project; cur != nil && cur.ID == projID {
		return nil
	}
	project, err := l.api.GetProject(ctx, sess, orgID, projID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	l.store.Dispatch(state.SelectProject{Project: &project})
	return nil
}

func (l *Loaders) redirectToLogin(nav *Navigation) (Outcome, error) {
	target, err := l.router.Navigate(route.NameLogin, map[string]string{
		"redirect": nav.To.FullPath,
	})
	if err != nil {
		return Continue(), fmt.Errorf("build login route: %w", err)
	}
	return RedirectTo(target), nil
}

func messageFilter(params map[string]string) api.MessageFilter {
	limit, _ := strconv.Atoi(params["limit"])
	return api.MessageFilter{
		Limit:  limit,
		Status: params["status"],
		Query:  params["q"],
		Labels: params["labels"],
		Before: params["before"],
	}
}
