package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := cfg.Planner
	if p.CreditScale != 10 || p.TotalTarget != 150 || p.TotalSlack != 9 || p.FinalTerm != 8 {
		t.Fatalf("unexpected planner defaults %+v", p)
	}
	if p.ExtendedCeiling != 26.5 || p.ExtendedAfterTerm != 2 || p.MaxExtendedTerms != 2 {
		t.Fatalf("unexpected extended load defaults %+v", p)
	}
	if cfg.Catalog.Source != CatalogSourceYAML || cfg.UsesPostgres() {
		t.Fatalf("catalog source = %q, want yaml", cfg.Catalog.Source)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
catalog:
  source: POSTGRES
planner:
  total_target: 120
  humanities_floor: 12
  solve_timeout: 5s
`)
	t.Setenv("PLANNER_TOTAL_SLACK", "4.5")
	t.Setenv("PLANNER_RELAX", "false")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Database.Host != "db.internal" {
		t.Fatalf("server/database not overridden: %+v %+v", cfg.Server, cfg.Database)
	}
	if !cfg.UsesPostgres() {
		t.Fatalf("catalog source must be normalised, got %q", cfg.Catalog.Source)
	}
	p := cfg.Planner
	if p.TotalTarget != 120 || p.HumanitiesFloor != 12 || p.TotalSlack != 4.5 || p.Relax {
		t.Fatalf("planner overrides not applied: %+v", p)
	}
	if p.ElectiveFloor != 15 {
		t.Fatalf("unset fields must keep defaults, elective floor = %v", p.ElectiveFloor)
	}
	if !strings.Contains(cfg.GetPostgresConnectionString(), "@db.internal:5432/degreeplan") {
		t.Fatalf("connection string = %s", cfg.GetPostgresConnectionString())
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "unknown source", body: "catalog:\n  source: csv\n"},
		{name: "zero scale", body: "planner:\n  credit_scale: 0\n"},
		{name: "bad timeout", body: "planner:\n  solve_timeout: soon\n"},
		{name: "bad env float", body: "", env: map[string]string{"PLANNER_TOTAL_TARGET": "many"}},
		{name: "negative floor", body: "planner:\n  humanities_floor: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
