package route

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRoutesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write routes file: %v", err)
	}
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeRoutesFile(t, `
routes:
  - name: home
    path: ""
  - name: login
    path: login
  - name: projects
    path: "{org_id}/projects"
    children:
      - name: project
        path: "{proj_id}"
`)

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}

	got, err := table.Match("/acme/projects/p1")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Name != "projects.project" {
		t.Errorf("Name = %q, want projects.project", got.Name)
	}
	if got.Params["proj_id"] != "p1" {
		t.Errorf("proj_id = %q, want p1", got.Params["proj_id"])
	}
}

func TestLoadTable_missingFile(t *testing.T) {
	if _, err := LoadTable("/nonexistent/routes.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadTable_invalidYAML(t *testing.T) {
	path := writeRoutesFile(t, "routes: [unclosed")
	if _, err := LoadTable(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadTable_emptyRoutes(t *testing.T) {
	path := writeRoutesFile(t, "routes: []")
	if _, err := LoadTable(path); err == nil {
		t.Error("expected error for empty route list")
	}
}

func TestLoadTable_validationApplies(t *testing.T) {
	path := writeRoutesFile(t, `
routes:
  - name: a
    path: "{x}"
  - name: b
    path: "{y}"
`)
	if _, err := LoadTable(path); err == nil {
		t.Error("loaded table should go through the same validation as code tables")
	}
}
