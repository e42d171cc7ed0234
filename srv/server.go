// Package srv is the HTTP surface: collection CRUD, the field mutation
// endpoints, schema reads, and the websocket upgrade path. Responses use
// a uniform {success, data?, error?} envelope.
package srv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docgrid/docgrid/editor"
	"github.com/docgrid/docgrid/hub"
	"github.com/docgrid/docgrid/store"
)

// Server wires the service pieces behind a router. Construct once at
// startup and share by reference; there is no global state.
type Server struct {
	router   *mux.Router
	store    store.Store
	editor   *editor.Service
	hub      *hub.Hub
	database string
	log      *slog.Logger
	metrics  *metrics
}

func NewServer(st store.Store, ed *editor.Service, h *hub.Hub, database string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router:   mux.NewRouter().StrictSlash(true),
		store:    st,
		editor:   ed,
		hub:      h,
		database: database,
		log:      log,
		metrics:  newMetrics(h),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := s.router

	r.HandleFunc("/health", s.handleHealth()).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods("GET")
	r.Handle("/editor-ws", s.hub)

	api := r.PathPrefix("/api/collections").Subrouter()
	api.HandleFunc("/test-connection", s.handleTestConnection()).Methods("POST")
	api.HandleFunc("", s.handleListCollections()).Methods("GET")
	api.HandleFunc("/{collection}/stats", s.handleStats()).Methods("GET")
	api.HandleFunc("/{collection}/schema", s.handleGetSchema()).Methods("GET")
	api.HandleFunc("/{collection}/fields", s.handleAddField()).Methods("POST")
	api.HandleFunc("/{collection}/fields/{fieldName}", s.handleRenameField()).Methods("PUT")
	api.HandleFunc("/{collection}/fields/{fieldName}", s.handleRemoveField()).Methods("DELETE")
	api.HandleFunc("/{collection}", s.handleGetDocuments()).Methods("GET")
	api.HandleFunc("/{collection}", s.handleCreateDocument()).Methods("POST")
	api.HandleFunc("/{collection}/{id}", s.handleUpdateDocument()).Methods("PUT")
	api.HandleFunc("/{collection}/{id}", s.handleDeleteDocument()).Methods("DELETE")

	r.Use(s.requestIDMiddleware, s.logMiddleware)
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) writeData(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), apiResponse{Success: false, Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("could not write response", "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case store.IsKind(err, store.ErrValidation):
		return http.StatusBadRequest
	case store.IsKind(err, store.ErrConflict):
		return http.StatusConflict
	case store.IsKind(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// editorID pulls the originating editor's id off a mutation request so
// change broadcasts can skip echoing back to it.
func editorID(r *http.Request) string {
	if id := r.Header.Get("X-Editor-Id"); id != "" {
		return id
	}
	return r.URL.Query().Get("editorId")
}
