package route

import (
	"testing"
)

func TestBuild_basic(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name     string
		route    string
		params   map[string]string
		wantPath string
	}{
		{"home", NameHome, nil, "/"},
		{"login", NameLogin, nil, "/login"},
		{"org", NameOrg, map[string]string{"org_id": "acme"}, "/acme"},
		{
			"project", NameProject,
			map[string]string{"org_id": "acme", "proj_id": "p1"},
			"/acme/projects/p1",
		},
		{
			"deep message", NameMessage,
			map[string]string{"org_id": "acme", "proj_id": "p1", "stream_id": "s1", "message_id": "m1"},
			"/acme/projects/p1/streams/s1/messages/m1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Build(tt.route, tt.params)
			if err != nil {
				t.Fatalf("Build(%q) error = %v", tt.route, err)
			}
			if got.FullPath != tt.wantPath {
				t.Errorf("FullPath = %q, want %q", got.FullPath, tt.wantPath)
			}
			if got.Name != tt.route {
				t.Errorf("Name = %q, want %q", got.Name, tt.route)
			}
		})
	}
}

func TestBuild_leftoverParamsBecomeQuery(t *testing.T) {
	got, err := DefaultTable().Build(NameMessages, map[string]string{
		"org_id": "acme", "proj_id": "p1", "stream_id": "s1",
		"limit": "25", "status": "bounced",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// Encode sorts query keys, so the path is canonical.
	want := "/acme/projects/p1/streams/s1/messages?limit=25&status=bounced"
	if got.FullPath != want {
		t.Errorf("FullPath = %q, want %q", got.FullPath, want)
	}
}

func TestBuild_escapesPathValues(t *testing.T) {
	got, err := DefaultTable().Build(NameOrg, map[string]string{"org_id": "acme corp"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got.FullPath != "/acme%20corp" {
		t.Errorf("FullPath = %q, want /acme%%20corp", got.FullPath)
	}
}

func TestBuild_unknownRouteName(t *testing.T) {
	_, err := DefaultTable().Build("nope", nil)
	if err == nil {
		t.Fatal("expected error for unknown route name")
	}
}

func TestBuild_missingPathParamPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Build should panic on a missing path parameter")
		}
	}()
	DefaultTable().Build(NameProject, map[string]string{"org_id": "acme"})
}

func TestBuild_roundTripsWithMatch(t *testing.T) {
	table := DefaultTable()
	params := map[string]string{
		"org_id": "acme", "proj_id": "p1", "stream_id": "s1", "limit": "10",
	}

	built, err := table.Build(NameMessages, params)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	matched, err := table.Match(built.FullPath)
	if err != nil {
		t.Fatalf("Match(%q) error = %v", built.FullPath, err)
	}
	if matched.Name != NameMessages {
		t.Errorf("round trip Name = %q, want %q", matched.Name, NameMessages)
	}
	for k, v := range params {
		if matched.Params[k] != v {
			t.Errorf("round trip Params[%q] = %q, want %q", k, matched.Params[k], v)
		}
	}
}
