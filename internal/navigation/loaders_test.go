package navigation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/remails/console/internal/api"
	"github.com/remails/console/internal/route"
	"github.com/remails/console/internal/router"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/model"
)

// newBackend serves a minimal slice of the Remails API for loader tests.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer good-token"
	}

	mux.HandleFunc("/api/whoami", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, model.User{ID: "u1", Email: "user@example.com"})
	})
	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.ServerConfig{MaxProjects: 10, SupportEmail: "support@remails.test"})
	})
	mux.HandleFunc("/api/organizations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Organization{{ID: "acme", Name: "Acme"}, {ID: "beta", Name: "Beta"}})
	})
	mux.HandleFunc("/api/organizations/acme/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Project{{ID: "p1", OrgID: "acme", Name: "Mailer"}})
	})
	mux.HandleFunc("/api/organizations/acme/projects/p1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.Project{ID: "p1", OrgID: "acme", Name: "Mailer"})
	})
	mux.HandleFunc("/api/organizations/acme/subscription", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.Subscription{Plan: "pro", Status: "active"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type loaderFixture struct {
	loaders *Loaders
	store   *state.Store
	router  *router.Router
}

func newLoaderFixture(t *testing.T, backendURL string) *loaderFixture {
	t.Helper()
	st := state.NewStore()
	rt := router.New(route.DefaultTable(), "/")
	client := api.NewClient(backendURL, time.Second)
	return &loaderFixture{
		loaders: NewLoaders(client, st, rt, nil),
		store:   st,
		router:  rt,
	}
}

func sessionCtx(token string) context.Context {
	return model.WithSession(context.Background(), &model.Session{ID: "sess-1", Token: token})
}

func navTo(t *testing.T, rt *router.Router, name string, params map[string]string) *Navigation {
	t.Helper()
	target, err := rt.Navigate(name, params)
	if err != nil {
		t.Fatalf("Navigate(%q) error = %v", name, err)
	}
	return &Navigation{To: target}
}

func TestSessionLoader_publicRoutesSkipChecks(t *testing.T) {
	f := newLoaderFixture(t, "http://unused.invalid")
	mw := f.loaders.Session()

	for _, name := range []string{route.NameLogin, route.NameNotFound} {
		outcome, err := mw.Handle(context.Background(), navTo(t, f.router, name, nil))
		if err != nil {
			t.Fatalf("Handle(%s) error = %v", name, err)
		}
		if _, redirected := outcome.Redirect(); redirected {
			t.Errorf("public route %s must not redirect", name)
		}
	}
}

func TestSessionLoader_missingSessionRedirectsToLogin(t *testing.T) {
	f := newLoaderFixture(t, "http://unused.invalid")
	mw := f.loaders.Session()

	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "acme"})
	outcome, err := mw.Handle(context.Background(), nav)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	target, redirected := outcome.Redirect()
	if !redirected {
		t.Fatal("missing session should redirect")
	}
	if target.Name != route.NameLogin {
		t.Errorf("redirect target = %q, want login", target.Name)
	}
	if target.Params["redirect"] != "/acme/projects" {
		t.Errorf("redirect param = %q, want the originally requested path", target.Params["redirect"])
	}
}

func TestSessionLoader_rejectedTokenRedirectsToLogin(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.Session()

	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "acme"})
	outcome, err := mw.Handle(sessionCtx("bad-token"), nav)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	target, redirected := outcome.Redirect()
	if !redirected || target.Name != route.NameLogin {
		t.Errorf("rejected token should redirect to login, got %q", target.Name)
	}
}

func TestSessionLoader_validSessionLoadsUserAndConfig(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.Session()

	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "acme"})
	outcome, err := mw.Handle(sessionCtx("good-token"), nav)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if _, redirected := outcome.Redirect(); redirected {
		t.Fatal("valid session must not redirect")
	}

	st := f.store.State()
	if st.User == nil || st.User.ID != "u1" {
		t.Error("user should be stored after a successful session check")
	}
	if st.Config == nil || st.Config.MaxProjects != 10 {
		t.Error("server config should be fetched on first navigation")
	}
}

func TestOrganizationsLoader_homeRedirectsToFirstOrg(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.Organizations()

	nav := navTo(t, f.router, route.NameHome, nil)
	outcome, err := mw.Handle(sessionCtx("good-token"), nav)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	target, redirected := outcome.Redirect()
	if !redirected {
		t.Fatal("home should redirect to the default organization")
	}
	if target.Name != route.NameOrg || target.Params["org_id"] != "acme" {
		t.Errorf("redirect = %q %v, want org/acme", target.Name, target.Params)
	}
	if len(f.store.State().Organizations) != 2 {
		t.Error("organizations should be loaded into state")
	}
}

func TestOrganizationsLoader_selectsMatchingOrg(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.Organizations()

	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "beta"})
	if _, err := mw.Handle(sessionCtx("good-token"), nav); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	org := f.store.State().Organization
	if org == nil || org.ID != "beta" {
		t.Errorf("selected organization = %v, want beta", org)
	}
}

func TestOrganizationsLoader_unknownOrgFails(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.Organizations()

	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "ghost"})
	_, err := mw.Handle(sessionCtx("good-token"), nav)
	if err == nil {
		t.Fatal("unknown org_id should fail the navigation")
	}
}

func TestOrganizationsLoader_reusesLoadedOrgs(t *testing.T) {
	f := newLoaderFixture(t, "http://unused.invalid")
	f.store.Dispatch(state.SetOrganizations{Organizations: []model.Organization{{ID: "acme"}}})
	mw := f.loaders.Organizations()

	// No backend call happens: the org list is already in state.
	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "acme"})
	if _, err := mw.Handle(sessionCtx("good-token"), nav); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := f.store.State().Organization; got == nil || got.ID != "acme" {
		t.Error("organization should be selected from the cached list")
	}
}

func TestRouteDataLoader_loadsProjects(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.RouteData()

	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "acme"})
	if _, err := mw.Handle(sessionCtx("good-token"), nav); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	projects := f.store.State().Projects
	if len(projects) != 1 || projects[0].ID != "p1" {
		t.Errorf("Projects = %v, want [p1]", projects)
	}
}

func TestRouteDataLoader_loadsProjectDetail(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.RouteData()

	nav := navTo(t, f.router, route.NameProject, map[string]string{"org_id": "acme", "proj_id": "p1"})
	if _, err := mw.Handle(sessionCtx("good-token"), nav); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	project := f.store.State().Project
	if project == nil || project.Name != "Mailer" {
		t.Errorf("Project = %v, want Mailer", project)
	}
}

func TestRouteDataLoader_loadsSubscription(t *testing.T) {
	backend := newBackend(t)
	f := newLoaderFixture(t, backend.URL)
	mw := f.loaders.RouteData()

	nav := navTo(t, f.router, route.NameBilling, map[string]string{"org_id": "acme"})
	if _, err := mw.Handle(sessionCtx("good-token"), nav); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	sub := f.store.State().Subscription
	if sub == nil || sub.Plan != "pro" {
		t.Errorf("Subscription = %v, want pro", sub)
	}
}

func TestRouteDataLoader_backendErrorFailsNavigation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newLoaderFixture(t, srv.URL)
	mw := f.loaders.RouteData()

	nav := navTo(t, f.router, route.NameProjects, map[string]string{"org_id": "acme"})
	if _, err := mw.Handle(sessionCtx("good-token"), nav); err == nil {
		t.Fatal("backend failure should fail the navigation")
	}
}

func TestPipeline_order(t *testing.T) {
	f := newLoaderFixture(t, "http://unused.invalid")

	pipeline := f.loaders.Pipeline()
	if len(pipeline) != 3 {
		t.Fatalf("Pipeline() = %d steps, want 3", len(pipeline))
	}
	want := []string{"session", "organizations", "route_data"}
	for i, name := range want {
		if pipeline[i].Name() != name {
			t.Errorf("pipeline[%d] = %q, want %q", i, pipeline[i].Name(), name)
		}
	}
}

func TestMessageFilter_parsesParams(t *testing.T) {
	f := messageFilter(map[string]string{
		"limit": "25", "status": "bounced", "q": "invoice", "labels": "prod", "before": "cursor-1",
	})
	if f.Limit != 25 || f.Status != "bounced" || f.Query != "invoice" || f.Labels != "prod" || f.Before != "cursor-1" {
		t.Errorf("messageFilter() = %+v", f)
	}

	// A non-numeric limit falls back to zero (backend default).
	f = messageFilter(map[string]string{"limit": "lots"})
	if f.Limit != 0 {
		t.Errorf("Limit = %d, want 0", f.Limit)
	}
}
