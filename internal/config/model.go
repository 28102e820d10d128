// internal/config/model.go
//
// Typed configuration model for Primer.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `PRIMER_`-prefixed environment overrides – highest precedence.
//
// Any secret whose string begins with `vault:` is resolved through
// internal/vault after unmarshalling, so the rest of the app only ever
// sees plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the content DSN template and its secret.
//
// The DSN stays in YAML so operators can tweak host, port, or flags.  The
// password is usually a `vault:<path>#<key>` reference and is spliced into
// the single `%s` verb of the DSN at connect time.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required,dsn_verbs"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
}

// ResolvedDSN returns the DSN with the password substituted.
func (d Database) ResolvedDSN() string {
	if strings.Count(d.DSN, "%s") == 1 {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

//
// Site section
//

// Site is the blog identity.
type Site struct {
	Name    string `koanf:"name"    validate:"required"`
	Tagline string `koanf:"tagline"`
	Home    string `koanf:"home"    validate:"required,url"`
	Version string `koanf:"version"`
	Credit  string `koanf:"credit"`
}

//
// Theme section
//

// Theme selects the template set, declarations, and toggles.
type Theme struct {
	Name          string `koanf:"name"           validate:"required"`
	DefaultLayout string `koanf:"default_layout" validate:"omitempty,oneof=one-column one-column-wide two-column-default two-column-reversed three-column-default three-column-center three-column-reversed"`

	// OverrideDir may hold templates/*.html replacing the built-ins.
	OverrideDir string `koanf:"override_dir"`

	// Declarations is a YAML file layered over the embedded image sizes,
	// sidebars, and nav menus.
	Declarations string `koanf:"declarations"`

	// DisabledToggles lists built-in toggles that must not be applied.
	DisabledToggles []string `koanf:"disabled_toggles"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // PRIMER_ROOT or discovered parent
}

// Abs resolves p against Root unless it is already absolute or empty.
func (p Paths) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Site     Site     `koanf:"site"`
	Theme    Theme    `koanf:"theme"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills optional fields the YAML left empty.
func (c *Config) applyDefaults() {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Theme.Name == "" {
		c.Theme.Name = "primer"
	}
	if c.Theme.DefaultLayout == "" {
		c.Theme.DefaultLayout = "two-column-default"
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
}
