package handlers

import (
	"encoding/json"
	"net/http"

	"imobilBack/internal/models"
	"imobilBack/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
}

// CreateRequest takes a public price-estimate request. The approved flag
// in the payload is ignored.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in models.RequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (h *RequestHandler) GetRequestByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	req, err := h.Service.GetRequestByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *RequestHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Service.GetRequests(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reqs)
}

func (h *RequestHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	var in models.RequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	req, err := h.Service.UpdateRequest(r.Context(), actorFrom(r), id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *RequestHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteRequest(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
