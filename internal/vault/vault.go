// internal/vault/vault.go
//
// Vault secrets for Primer's configuration.
//
// Context
// -------
// The config loader hands every `vault:<mount>/<path>#<key>` value to
// Resolve.  Reads go to KV v2.  Resolved values are held in a go-cache
// store for resolveTTL, and concurrent misses for the same key share one
// Vault round trip (singleflight).  A background loop keeps the token
// renewed for as long as the boot context lives.
//
// Environment
// -----------
// • VAULT_ADDR   scheme and host of the Vault server.
// • VAULT_TOKEN  initial token.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RefPrefix marks a config value that lives in Vault.
const RefPrefix = "vault:"

// resolveTTL bounds how long a resolved secret is reused.
const resolveTTL = 10 * time.Minute

// ErrBadRef is returned for a value that is not `vault:<path>#<key>`.
var ErrBadRef = errors.New("vault: malformed reference")

//
// SECTION 1.  Client
//

// Client is safe for concurrent use.  Create once at startup.
type Client struct {
	api   *vault.Client
	log   *zap.Logger
	cache *gocache.Cache
	group singleflight.Group
}

// New builds a client from the VAULT_* environment and starts token
// renewal bound to ctx.
func New(ctx context.Context, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}

	c := &Client{
		api:   api,
		log:   log.Named("vault"),
		cache: gocache.New(resolveTTL, 2*resolveTTL),
	}
	go c.renewLoop(ctx)
	return c, nil
}

// Resolve fetches the secret a `vault:` reference points at.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	canonical := path + "#" + key
	if v, ok := c.cache.Get(canonical); ok {
		return v.(string), nil
	}
	v, err, _ := c.group.Do(canonical, func() (any, error) {
		val, err := c.read(ctx, path, key)
		if err != nil {
			return "", err
		}
		c.cache.SetDefault(canonical, val)
		return val, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// read fetches one string key from a KV v2 secret.
func (c *Client) read(ctx context.Context, secretPath, key string) (string, error) {
	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}
	return val, nil
}

// IsRef reports whether s is a `vault:` reference.
func IsRef(s string) bool { return strings.HasPrefix(s, RefPrefix) }

// ParseRef splits `vault:<path>#<key>` into path and key.
func ParseRef(ref string) (path, key string, err error) {
	if !IsRef(ref) {
		return "", "", fmt.Errorf("%w: %q has no %s prefix", ErrBadRef, ref, RefPrefix)
	}
	path, key, ok := strings.Cut(strings.TrimPrefix(ref, RefPrefix), "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q, want vault:<path>#<key>", ErrBadRef, ref)
	}
	return path, key, nil
}

//
// SECTION 2.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
probe:
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Probe the current token.
		sec, err := c.api.Auth().Token().RenewSelf(0)
		if err != nil {
			c.log.Warn("token renew self failed", zap.Error(err))
			backoff(ctx, 30*time.Second)
			continue
		}

		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.log.Info("token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		renewer, err := c.api.NewRenewer(&vault.RenewerInput{
			Secret: sec,
			Grace:  15 * time.Second,
		})
		if err != nil {
			c.log.Warn("renewer init failed", zap.Error(err))
			backoff(ctx, 30*time.Second)
			continue
		}

		go renewer.Renew()

		for {
			select {
			case <-ctx.Done():
				renewer.Stop()
				return
			case err := <-renewer.DoneCh():
				renewer.Stop()
				if err != nil {
					c.log.Warn("token renewal stopped", zap.Error(err))
				}
				backoff(ctx, 15*time.Second)
				continue probe
			case ev := <-renewer.RenewCh():
				if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
					c.log.Debug("token renewed", zap.Int("ttl_seconds", ev.Secret.Auth.LeaseDuration))
				}
			}
		}
	}
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
