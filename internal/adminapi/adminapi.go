// Package adminapi exposes a small read-only HTTP surface on the hub
// for operator tooling: liveness and a session listing. It carries no
// packet content and is not the operator UI spec.md places out of
// scope — it is a plain diagnostic surface, grounded on the teacher's
// cmd/ns-api gorilla/mux router.
package adminapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"netspectra/internal/hub"
)

// API serves hub introspection endpoints.
type API struct {
	registry *hub.Registry
	router   *mux.Router
}

// New builds an API backed by registry.
func New(registry *hub.Registry) *API {
	a := &API{registry: registry, router: mux.NewRouter()}
	a.router.HandleFunc("/healthz", a.handleHealthz).Methods(http.MethodGet)
	a.router.HandleFunc("/sessions", a.handleSessions).Methods(http.MethodGet)
	return a
}

// ListenAndServe starts the HTTP server and blocks until it exits.
func (a *API) ListenAndServe(addr string) error {
	server := &http.Server{Addr: addr, Handler: a.router}
	log.Printf("adminapi: listening on %s", addr)
	return server.ListenAndServe()
}

type healthzResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthzResponse{Status: "ok", Sessions: a.registry.Count()})
}

func (a *API) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.registry.Snapshot())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("adminapi: failed to encode response: %v", err)
	}
}
