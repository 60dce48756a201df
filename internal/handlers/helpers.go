package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
)

// notFoundMessages maps the typed not-found sentinels to their wire
// messages. Each aggregate part fails with its own message, so a broken
// aggregate is distinguishable from a missing one.
var notFoundMessages = map[error]string{
	models.ErrListingNotFound:         "Anunțul nu a fost găsit.",
	models.ErrApartmentNotFound:       "Apartamentul nu a fost găsit.",
	models.ErrHouseNotFound:           "Casa nu a fost găsită.",
	models.ErrLandNotFound:            "Terenul nu a fost găsit.",
	models.ErrCommercialSpaceNotFound: "Spațiul comercial nu a fost găsit.",
	models.ErrImageNotFound:           "Imaginea nu a fost găsită.",
	models.ErrUserNotFound:            "Utilizatorul nu a fost găsit.",
	models.ErrMessageNotFound:         "Mesajul nu a fost găsit.",
	models.ErrRequestNotFound:         "Cererea nu a fost găsită.",
	models.ErrReferenceNotFound:       "Înregistrarea nu a fost găsită.",
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

// respondError translates service errors into wire responses. Validation
// failures come back field-scoped the way form clients expect them.
func respondError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, map[string][]string{verr.Field: {verr.Message}})
		return
	}

	for sentinel, message := range notFoundMessages {
		if errors.Is(err, sentinel) {
			respondMessage(w, http.StatusNotFound, message)
			return
		}
	}

	switch {
	case errors.Is(err, models.ErrForbidden):
		respondMessage(w, http.StatusForbidden, "Nu aveți permisiunea necesară.")
	case errors.Is(err, models.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Date de autentificare invalide.")
	case errors.Is(err, models.ErrReferenceInUse):
		respondMessage(w, http.StatusConflict, "Înregistrarea este folosită și nu poate fi ștearsă.")
	case errors.Is(err, models.ErrDuplicateEmail):
		respondJSON(w, http.StatusBadRequest, map[string][]string{"email": {"Acest email este deja folosit de un alt utilizator."}})
	default:
		respondMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// actorFrom reads the caller's identity set by the token middleware.
// Missing values leave an unauthenticated actor, never a panic.
func actorFrom(r *http.Request) auth.Actor {
	userID, okID := r.Context().Value("user_id").(int)
	role, okRole := r.Context().Value("role").(int)
	if !okID || !okRole {
		return auth.Actor{}
	}
	return auth.Actor{UserID: userID, Role: role, Authenticated: true}
}

// pathID reads a numeric pat URL parameter.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.URL.Query().Get(":" + name))
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}
