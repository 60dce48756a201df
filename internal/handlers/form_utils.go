package handlers

import (
	"net/http"
	"strconv"

	"imobilBack/internal/models"
)

// Listing payloads arrive as multipart forms holding flat fields plus
// repeated "images" parts. The helpers below treat an absent field as
// "leave untouched" and a present field as a value to apply.

func formString(r *http.Request, name string) *string {
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func formInt(r *http.Request, name string) (*int, error) {
	raw := formString(r, name)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, &models.ValidationError{Field: name, Message: "Valoarea trebuie să fie un număr întreg."}
	}
	return &v, nil
}

func formFloat(r *http.Request, name string) (*float64, error) {
	raw := formString(r, name)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return nil, &models.ValidationError{Field: name, Message: "Valoarea trebuie să fie un număr."}
	}
	return &v, nil
}

func formBool(r *http.Request, name string) (*bool, error) {
	raw := formString(r, name)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseBool(*raw)
	if err != nil {
		return nil, &models.ValidationError{Field: name, Message: "Valoarea trebuie să fie true sau false."}
	}
	return &v, nil
}

// collectImageSources gathers the "images" parts of a multipart form:
// file parts become binary sources, value parts become URL references.
// The second result reports whether the form carried the key at all; an
// absent key means "leave the image set untouched", while an empty
// value clears it.
func collectImageSources(r *http.Request) ([]models.ImageSource, bool) {
	if r.MultipartForm == nil {
		return nil, false
	}

	var (
		sources []models.ImageSource
		set     bool
	)
	if files, ok := r.MultipartForm.File["images"]; ok {
		set = true
		for _, fh := range files {
			sources = append(sources, models.ImageSource{File: fh})
		}
	}
	if values, ok := r.MultipartForm.Value["images"]; ok {
		set = true
		for _, v := range values {
			if v == "" {
				continue
			}
			sources = append(sources, models.ImageSource{URL: v})
		}
	}
	return sources, set
}
