// internal/requestinfo/middleware.go
//
// Middleware that attaches *RequestInfo to every request.
//
// Context
// -------
// Mounted on the root chi router after the security headers, so the page
// handler can copy the device class and bot flag onto request.Context and
// modules/debug can echo the whole record.
//
// The client address is the left-most public entry of X-Forwarded-For,
// then X-Real-Ip, then RemoteAddr.  Private and loopback hops in the
// forwarded chain are skipped; if nothing public is found the first
// parseable address wins.
//
// Notes
// -----
//   • Geo lookups are skipped for private addresses (GeoLite2 has no
//     answer for them anyway).
//   • Oxford commas, two spaces after periods.
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Enrich is Middleware bound to the global logger.
func Enrich(next http.Handler) http.Handler { return Middleware(zap.L())(next) }

// Middleware returns the enrichment middleware logging through log.
func Middleware(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("requestinfo")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := Build(r)
			if ce := log.Check(zap.DebugLevel, "request info"); ce != nil {
				ce.Write(
					zap.Stringer("ip", info.Geo.IP),
					zap.String("country", info.Geo.CountryISO),
					zap.String("device", info.UA.Device),
					zap.Bool("bot", info.UA.IsBot),
					zap.String("path", r.URL.Path),
				)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, info)))
		})
	}
}

// Build parses r into a RequestInfo without touching the context.
func Build(r *http.Request) *RequestInfo {
	ip := clientIP(r)
	info := &RequestInfo{
		UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
		URL:       r.URL,
		Timestamp: time.Now().UTC(),
	}
	if ip != nil && !isPrivate(ip) {
		info.Geo = lookupGeo(ip)
	} else {
		info.Geo = Geo{IP: ip}
	}
	return info
}

func clientIP(r *http.Request) net.IP {
	var first net.IP
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		ip := net.ParseIP(strings.TrimSpace(part))
		if ip == nil {
			continue
		}
		if !isPrivate(ip) {
			return ip
		}
		if first == nil {
			first = ip
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-Ip"))); ip != nil {
		return ip
	}
	if first != nil {
		return first
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}

func isPrivate(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
