// internal/server/timeouts.go
//
// *http.Server with the timeouts cmd/web serves behind.
//
//   • ReadHeaderTimeout  5 s, slow-loris headers
//   • ReadTimeout       10 s, whole request including the body
//   • WriteTimeout      15 s, covers compose and render of one page
//   • IdleTimeout       60 s, keep-alive connections
//
// Shutdown is the caller's job (cmd/web drains on SIGTERM).

package server

import (
	"net/http"
	"time"
)

// NewHTTPServer returns an unstarted server for handler on addr.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
