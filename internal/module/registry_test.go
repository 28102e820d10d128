package module

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/primer/internal/hook"
)

func reset() {
	mu.Lock()
	registry = map[string]Module{}
	mu.Unlock()
}

type stub struct {
	name string
	fail bool
}

func (s stub) Name() string { return s.name }

func (s stub) Setup(r *hook.Registry, _ Env) error {
	if _, err := r.AddAction(hook.Init, s.name+"_init", hook.ActionFunc(func() {}), hook.WithOwner(s.name)); err != nil {
		return err
	}
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

type routed struct{ stub }

func (routed) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("pong")) })
	return r
}

func TestSetupAll_OrderAndFailureDetach(t *testing.T) {
	reset()
	defer reset()
	Register(stub{name: "zeta"})
	Register(stub{name: "alpha"})
	Register(stub{name: "broken", fail: true})

	r := hook.New(nil)
	loaded := SetupAll(r, Env{})
	if !reflect.DeepEqual(loaded, []string{"alpha", "zeta"}) {
		t.Fatalf("loaded = %v", loaded)
	}
	if r.Has(hook.Init, "broken_init") {
		t.Fatal("failing module's callbacks were not detached")
	}
	if !r.Has(hook.Init, "alpha_init") || !r.Has(hook.Init, "zeta_init") {
		t.Fatal("healthy modules missing")
	}
}

func TestMount(t *testing.T) {
	reset()
	defer reset()
	Register(routed{stub{name: "probe"}})
	Register(stub{name: "plain"})

	mux := chi.NewRouter()
	if err := Mount(mux); err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/probe/ping", nil))
	if rr.Body.String() != "pong" {
		t.Fatalf("body = %q", rr.Body.String())
	}
}
