package handlers

import (
	"net/http"

	"imobilBack/internal/services"
)

const maxImageUploadSize = 16 << 20

// ImageHandler serves a listing's images as a nested collection.
type ImageHandler struct {
	Service *services.ImageService
}

func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "listing_id")
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	images, err := h.Service.ListImages(r.Context(), listingID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, images)
}

func (h *ImageHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "listing_id")
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}

	img, err := h.Service.AddImage(r.Context(), actorFrom(r), listingID, files[0])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, img)
}

func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "listing_id")
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}
	imageID, err := pathID(r, "image_id")
	if err != nil {
		http.Error(w, "Invalid image ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteImage(r.Context(), actorFrom(r), listingID, imageID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
