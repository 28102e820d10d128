// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file in `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `PRIMER_`, where `__` maps to “.”
     (e.g., `PRIMER_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into typed structs, defaulted,
validated, and its `vault:` secrets are resolved.  The result is cached in
an `atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span:  final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`, so
    `go run ./cmd/web` works from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/vault"
)

const envPrefix = "PRIMER_"

var current atomic.Pointer[Config]

// SecretResolver turns a `vault:` reference into its value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves PRIMER_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the executable's parent for the bin/ layout.
func rootDir() string {
	if r := os.Getenv("PRIMER_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root, builds the Config, and caches it.  A Vault
// client is created only when a secret needs one.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)
	return LoadFrom(ctx, root, nil)
}

// LoadFrom builds the Config rooted at root.  When secrets is nil and a
// `vault:` reference is present, a client is created from VAULT_ADDR and
// VAULT_TOKEN.
func LoadFrom(ctx context.Context, root string, secrets SecretResolver) (*Config, error) {
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: PRIMER_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	cfg.applyDefaults()
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, &cfg, secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"theme", cfg.Theme.Name,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets swaps every `vault:` reference for its value.
func resolveSecrets(ctx context.Context, cfg *Config, secrets SecretResolver) error {
	refs := []*string{&cfg.Database.Password}

	for _, ref := range refs {
		if !vault.IsRef(*ref) {
			continue
		}
		if secrets == nil {
			cli, err := vault.New(ctx, zap.L())
			if err != nil {
				return err
			}
			secrets = cli
		}
		val, err := secrets.Resolve(ctx, *ref)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *ref, err)
		}
		*ref = val
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context) error { _, err := Load(ctx); return err }
