package srv

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/docgrid/docgrid/schema"
	"github.com/docgrid/docgrid/store"
)

type addFieldRequest struct {
	FieldName    string `json:"fieldName"`
	FieldType    string `json:"fieldType"`
	DefaultValue any    `json:"defaultValue"`
}

func (s *Server) handleAddField() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collection := mux.Vars(r)["collection"]

		var req addFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, store.Wrap(store.ErrValidation, "invalid request body", err))
			return
		}
		if req.FieldName == "" || req.FieldType == "" {
			s.writeError(w, store.ValidationError("field name and type are required"))
			return
		}

		modified, err := s.editor.AddField(r.Context(), collection, req.FieldName, schema.FieldType(req.FieldType), req.DefaultValue)
		s.metrics.fieldMutations.WithLabelValues("add", result(err)).Inc()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, map[string]int64{"modifiedCount": modified})
	}
}

type renameFieldRequest struct {
	NewFieldName string `json:"newFieldName"`
}

func (s *Server) handleRenameField() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		collection, oldName := vars["collection"], vars["fieldName"]

		var req renameFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, store.Wrap(store.ErrValidation, "invalid request body", err))
			return
		}
		if req.NewFieldName == "" {
			s.writeError(w, store.ValidationError("new field name is required"))
			return
		}

		modified, err := s.editor.RenameField(r.Context(), collection, oldName, req.NewFieldName)
		s.metrics.fieldMutations.WithLabelValues("rename", result(err)).Inc()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, map[string]int64{"modifiedCount": modified})
	}
}

func (s *Server) handleRemoveField() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		modified, err := s.editor.RemoveField(r.Context(), vars["collection"], vars["fieldName"])
		s.metrics.fieldMutations.WithLabelValues("remove", result(err)).Inc()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, map[string]int64{"modifiedCount": modified})
	}
}
