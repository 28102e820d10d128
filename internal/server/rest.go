package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/yanizio/primer/internal/host"
)

var jsonpCallback = regexp.MustCompile(`^[A-Za-z_$][\w$.]*$`)

// restDisabled answers every /wp-json request once rest_enabled is false.
func restDisabled(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, http.StatusForbidden, "rest_disabled", "The REST API is disabled on this site.")
}

// jsonp wraps REST responses in the `_jsonp` callback while
// rest_jsonp_enabled holds, and rejects the parameter otherwise.
func (s *Server) jsonp(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cb := r.URL.Query().Get("_jsonp")
		if cb == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !host.RestJSONPEnabled(s.engine.Hooks) {
			writeJSONError(w, http.StatusBadRequest, "rest_callback_disabled", "JSONP support is disabled on this site.")
			return
		}
		if !jsonpCallback.MatchString(cb) {
			writeJSONError(w, http.StatusBadRequest, "rest_callback_invalid", "Invalid JSONP callback function.")
			return
		}

		bw := &bufferedWriter{header: http.Header{}, status: http.StatusOK}
		next.ServeHTTP(bw, r)
		for k, vs := range bw.header {
			w.Header()[k] = vs
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.WriteHeader(bw.status)
		_, _ = w.Write([]byte("/**/" + cb + "("))
		_, _ = bw.body.WriteTo(w)
		_, _ = w.Write([]byte(")"))
	})
}

type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header         { return b.header }
func (b *bufferedWriter) Write(p []byte) (int, error) { return b.body.Write(p) }
func (b *bufferedWriter) WriteHeader(code int)        { b.status = code }

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": msg,
		"data":    map[string]int{"status": status},
	})
}
