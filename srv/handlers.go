package srv

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/docgrid/docgrid/document"
	"github.com/docgrid/docgrid/schema"
	"github.com/docgrid/docgrid/store"
)

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (s *Server) handleTestConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, map[string]string{
			"status":   "connected",
			"database": s.database,
		})
	}
}

func (s *Server) handleListCollections() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := s.store.ListCollections(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, names)
	}
}

func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.store.Stats(r.Context(), mux.Vars(r)["collection"])
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, stats)
	}
}

func (s *Server) handleGetSchema() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decl, err := s.editor.ReadSchema(r.Context(), mux.Vars(r)["collection"])
		if err != nil {
			s.writeError(w, err)
			return
		}
		if r.URL.Query().Get("format") == "openapi" {
			s.writeData(w, schema.ToOpenAPI(decl))
			return
		}
		s.writeData(w, map[string]any{
			"fields":     decl.Definitions(),
			"provenance": decl.Provenance,
		})
	}
}

func (s *Server) handleGetDocuments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		result, err := s.store.FindPage(r.Context(), mux.Vars(r)["collection"], page, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, result)
	}
}

func (s *Server) handleCreateDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := s.readDocumentBody(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		created, err := s.store.Insert(r.Context(), mux.Vars(r)["collection"], doc)
		s.metrics.documentWrites.WithLabelValues("create", result(err)).Inc()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, created)
	}
}

func (s *Server) handleUpdateDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		collection, id := vars["collection"], vars["id"]

		doc, err := s.readDocumentBody(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		updated, err := s.store.UpdateByID(r.Context(), collection, id, doc)
		s.metrics.documentWrites.WithLabelValues("update", result(err)).Inc()
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.hub.BroadcastDocumentUpdate(s.database, collection, id, updated, editorID(r))
		s.writeData(w, updated)
	}
}

func (s *Server) handleDeleteDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		collection, id := vars["collection"], vars["id"]

		err := s.store.DeleteByID(r.Context(), collection, id)
		s.metrics.documentWrites.WithLabelValues("delete", result(err)).Inc()
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.hub.BroadcastDocumentDelete(s.database, collection, id, editorID(r))
		s.writeData(w, nil)
	}
}

func (s *Server) readDocumentBody(r *http.Request) (document.Document, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, store.TransportError("could not read request body", err)
	}
	doc, err := document.FromJSON(body)
	if err != nil {
		return nil, store.Wrap(store.ErrValidation, "invalid document body", err)
	}
	return doc, nil
}
