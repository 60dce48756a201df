package handlers

import (
	"encoding/json"
	"net/http"

	"imobilBack/internal/models"
	"imobilBack/internal/services"
)

// ReferenceHandler serves one lookup catalog per kind: the routes bind
// each endpoint to its table.
type ReferenceHandler struct {
	Service *services.ReferenceService
}

func (h *ReferenceHandler) List(kind models.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refs, err := h.Service.List(r.Context(), kind)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, refs)
	}
}

func (h *ReferenceHandler) Get(kind models.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ref, err := h.Service.GetByID(r.Context(), kind, id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ref)
	}
}

func (h *ReferenceHandler) Create(kind models.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Reference
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		ref, err := h.Service.Create(r.Context(), actorFrom(r), kind, in.Name)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, ref)
	}
}

func (h *ReferenceHandler) Update(kind models.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var in models.Reference
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		ref, err := h.Service.Update(r.Context(), actorFrom(r), kind, id, in.Name)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ref)
	}
}

func (h *ReferenceHandler) Delete(kind models.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		if err := h.Service.Delete(r.Context(), actorFrom(r), kind, id); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
