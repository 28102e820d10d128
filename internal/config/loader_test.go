package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type fakeSecrets map[string]string

func (f fakeSecrets) Resolve(_ context.Context, ref string) (string, error) { return f[ref], nil }

func writeConf(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadFrom_LayersAndSecrets(t *testing.T) {
	root := writeConf(t, `
http:
  listen_addr: ":9000"
database:
  dsn: "primer:%s@tcp(db:3306)/primer?parseTime=true"
  password: "vault:secret/primer#db"
site:
  name: Example
  home: https://example.test
theme:
  declarations: conf/theme.yaml
  disabled_toggles: [disable-feeds]
`)
	t.Setenv("PRIMER_HTTP__LISTEN_ADDR", ":9100")

	cfg, err := LoadFrom(context.Background(), root, fakeSecrets{"vault:secret/primer#db": "s3cret"})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9100" {
		t.Fatalf("env override ignored: %s", cfg.HTTP.ListenAddr)
	}
	if got := cfg.Database.ResolvedDSN(); got != "primer:s3cret@tcp(db:3306)/primer?parseTime=true" {
		t.Fatalf("dsn = %s", got)
	}
	if cfg.Theme.Name != "primer" || cfg.Theme.DefaultLayout != "two-column-default" {
		t.Fatalf("theme defaults = %+v", cfg.Theme)
	}
	if len(cfg.Theme.DisabledToggles) != 1 || cfg.Theme.DisabledToggles[0] != "disable-feeds" {
		t.Fatalf("disabled toggles = %v", cfg.Theme.DisabledToggles)
	}
	if cfg.Paths.Abs(cfg.Theme.Declarations) != filepath.Join(root, "conf", "theme.yaml") {
		t.Fatalf("abs path = %s", cfg.Paths.Abs(cfg.Theme.Declarations))
	}
	if Get() != cfg {
		t.Fatal("config not cached")
	}
}

func TestLoadFrom_Validation(t *testing.T) {
	cases := map[string]string{
		"missing dsn": `
site: {name: X, home: "https://x.test"}
`,
		"two verbs": `
database: {dsn: "%s:%s@tcp(db)/x"}
site: {name: X, home: "https://x.test"}
`,
		"bad layout": `
database: {dsn: "x"}
site: {name: X, home: "https://x.test"}
theme: {default_layout: four-column}
`,
		"bad home": `
database: {dsn: "x"}
site: {name: X, home: "not a url"}
`,
	}
	for name, body := range cases {
		root := writeConf(t, body)
		if _, err := LoadFrom(context.Background(), root, fakeSecrets{}); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
