package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/remails/console/internal/history"
	"github.com/remails/console/internal/journal"
	"github.com/remails/console/internal/route"
	"github.com/remails/console/internal/router"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/model"
)

type fixture struct {
	controller *Controller
	store      *state.Store
	history    *history.Stack
}

func newFixture(t *testing.T, location string, opts ...Option) *fixture {
	t.Helper()
	st := state.NewStore()
	hs := history.NewStack()
	rt := router.New(route.DefaultTable(), location)
	return &fixture{
		controller: NewController(rt, st, hs, opts...),
		store:      st,
		history:    hs,
	}
}

func TestController_startSeedsHistory(t *testing.T) {
	f := newFixture(t, "/login")

	committed, err := f.controller.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if committed.Name != route.NameLogin {
		t.Errorf("committed = %q, want login", committed.Name)
	}
	if f.history.Len() != 1 {
		t.Errorf("history len = %d, want 1 (replace, not push)", f.history.Len())
	}
	if got := f.store.State().Route.Name; got != route.NameLogin {
		t.Errorf("state route = %q, want login", got)
	}
}

func TestController_navigatePushesHistory(t *testing.T) {
	f := newFixture(t, "/login")
	ctx := context.Background()

	if _, err := f.controller.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	committed, err := f.controller.Navigate(ctx, route.NameOrg, map[string]string{"org_id": "acme"})
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	if committed.FullPath != "/acme" {
		t.Errorf("FullPath = %q, want /acme", committed.FullPath)
	}
	if f.history.Len() != 2 {
		t.Errorf("history len = %d, want 2", f.history.Len())
	}
	st := f.store.State()
	if st.Route.Name != route.NameOrg {
		t.Errorf("state route = %q, want org", st.Route.Name)
	}
	if st.NextRoute != nil || st.Loading {
		t.Error("tentative route and loading flag must be cleared after commit")
	}
}

func TestController_unknownRouteCommitsNotFound(t *testing.T) {
	f := newFixture(t, "/login")

	committed, err := f.controller.Navigate(context.Background(), "no-such-route", nil)
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if committed.Name != route.NameNotFound {
		t.Errorf("committed = %q, want notfound", committed.Name)
	}
}

func TestController_navigateToLocation(t *testing.T) {
	f := newFixture(t, "/login")
	ctx := context.Background()

	committed, err := f.controller.NavigateToLocation(ctx, "/acme/projects/p1")
	if err != nil {
		t.Fatalf("NavigateToLocation() error = %v", err)
	}
	if committed.Name != route.NameProject {
		t.Errorf("committed = %q, want %q", committed.Name, route.NameProject)
	}
	if committed.Params["proj_id"] != "p1" {
		t.Errorf("proj_id = %q, want p1", committed.Params["proj_id"])
	}

	// Unmatched locations commit not-found instead of failing.
	committed, err = f.controller.NavigateToLocation(ctx, "/please/does/not/exist")
	if err != nil {
		t.Fatalf("NavigateToLocation() error = %v", err)
	}
	if committed.Name != route.NameNotFound {
		t.Errorf("committed = %q, want notfound", committed.Name)
	}
}

func TestController_middlewareRedirect(t *testing.T) {
	toLogin := Func{ID: "force-login", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		if nav.To.Name == route.NameLogin {
			return Continue(), nil
		}
		return RedirectTo(model.FullRouterState{
			RouterState: model.RouterState{Name: route.NameLogin},
			FullPath:    "/login",
		}), nil
	}}

	var sawRedirected bool
	after := Func{ID: "observer", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		// Later middleware run against the redirect target.
		sawRedirected = nav.To.Name == route.NameLogin
		return Continue(), nil
	}}

	f := newFixture(t, "/login", WithMiddleware(toLogin, after))

	committed, err := f.controller.Navigate(context.Background(), route.NameOrg, map[string]string{"org_id": "acme"})
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if committed.Name != route.NameLogin {
		t.Errorf("committed = %q, want login (redirect target)", committed.Name)
	}
	if !sawRedirected {
		t.Error("middleware after a redirect should see the replacement target")
	}
	cur, _ := f.history.Current()
	if cur.FullPath != "/login" {
		t.Errorf("history entry = %q, want the redirect target", cur.FullPath)
	}
}

func TestController_middlewareErrorCommitsNotFound(t *testing.T) {
	failing := Func{ID: "failing", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		return Continue(), errors.New("backend exploded")
	}}
	var laterRan bool
	later := Func{ID: "later", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		laterRan = true
		return Continue(), nil
	}}

	f := newFixture(t, "/login", WithMiddleware(failing, later))

	committed, err := f.controller.Navigate(context.Background(), route.NameOrg, map[string]string{"org_id": "acme"})
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if committed.Name != route.NameNotFound {
		t.Errorf("committed = %q, want notfound", committed.Name)
	}
	if laterRan {
		t.Error("a middleware error must abort the rest of the chain")
	}
}

func TestController_rejectsConcurrentNavigation(t *testing.T) {
	enteredPipeline := make(chan struct{})
	release := make(chan struct{})
	blocking := Func{ID: "blocking", Fn: func(ctx context.Context, nav *Navigation) (Outcome, error) {
		close(enteredPipeline)
		<-release
		return Continue(), nil
	}}

	f := newFixture(t, "/login", WithMiddleware(blocking))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.controller.Navigate(ctx, route.NameOrg, map[string]string{"org_id": "acme"})
		done <- err
	}()

	<-enteredPipeline

	_, err := f.controller.Navigate(ctx, route.NameBilling, map[string]string{"org_id": "acme"})
	var envelope *model.ErrorEnvelope
	if !errors.As(err, &envelope) || envelope.Code != model.ErrNavigationInFlight {
		t.Errorf("second navigation error = %v, want NAVIGATION_IN_FLIGHT", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first navigation error = %v", err)
	}

	// The rejected navigation must not have touched state or history.
	if f.history.Len() != 1 {
		t.Errorf("history len = %d, want 1", f.history.Len())
	}
	if got := f.store.State().Route.Name; got != route.NameOrg {
		t.Errorf("state route = %q, want org", got)
	}
}

func TestController_handlePopReplaysWithoutPushing(t *testing.T) {
	f := newFixture(t, "/login")
	ctx := context.Background()

	f.controller.Start(ctx)
	f.controller.Navigate(ctx, route.NameOrg, map[string]string{"org_id": "acme"})

	entry, ok := f.history.Back()
	if !ok {
		t.Fatal("Back() should succeed")
	}

	committed, err := f.controller.HandlePop(ctx, &entry)
	if err != nil {
		t.Fatalf("HandlePop() error = %v", err)
	}
	if committed.Name != route.NameLogin {
		t.Errorf("committed = %q, want login", committed.Name)
	}
	if f.history.Len() != 2 {
		t.Errorf("history len = %d, want 2 (pop must not push)", f.history.Len())
	}
	if got := f.store.State().Route.Name; got != route.NameLogin {
		t.Errorf("state route = %q, want login", got)
	}
}

func TestController_handlePopNilFallsBackToInitial(t *testing.T) {
	f := newFixture(t, "/login")

	committed, err := f.controller.HandlePop(context.Background(), nil)
	if err != nil {
		t.Fatalf("HandlePop() error = %v", err)
	}
	if committed.Name != route.NameLogin {
		t.Errorf("committed = %q, want the initial state", committed.Name)
	}
}

func TestController_journalRecordsTransitions(t *testing.T) {
	store := journal.NewMemoryStore()
	f := newFixture(t, "/login", WithJournal(store))

	ctx := model.WithSession(context.Background(), &model.Session{ID: "sess-1"})
	f.controller.Start(ctx)
	f.controller.Navigate(ctx, "no-such-route", nil)

	entries, err := store.List(ctx, journal.Filters{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("journal entries = %d, want 2", len(entries))
	}

	byRequested := make(map[string]journal.Entry, len(entries))
	for _, e := range entries {
		byRequested[e.Requested] = e
	}

	start := byRequested[route.NameLogin]
	if start.ToRoute != route.NameLogin || start.Result != "committed" {
		t.Errorf("start entry = %+v, want committed login", start)
	}

	miss := byRequested["no-such-route"]
	if miss.ToRoute != route.NameNotFound {
		t.Errorf("miss entry ToRoute = %q, want notfound", miss.ToRoute)
	}
}

func TestController_tableExposesRouteTable(t *testing.T) {
	f := newFixture(t, "/login")
	if f.controller.Table() == nil {
		t.Error("Table() should expose the route table")
	}
}
