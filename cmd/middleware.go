package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"imobilBack/internal/models"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.infoLog.Printf("%s - %s %s %s", r.RemoteAddr, r.Proto, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.errorLog.Printf("panic: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a valid access token. An expired
// access token can still pass when the Refresh-Token header names a live
// session; the rotated access token comes back in the response header.
func (app *application) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := app.resolveClaims(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
	})
}

func (app *application) resolveClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("Authorization header missing or invalid")
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(app.signingKey), nil
	})
	if err == nil && token.Valid {
		return claims, nil
	}

	refreshToken := r.Header.Get("Refresh-Token")
	if refreshToken == "" {
		return nil, fmt.Errorf("Invalid access token")
	}

	session, err := app.userRepo.GetSessionByToken(r.Context(), refreshToken)
	if err != nil || session.UserID == 0 {
		return nil, fmt.Errorf("Invalid refresh token")
	}
	if session.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("Expired refresh token")
	}

	newAccessToken, err := app.tokens.NewAccessToken(session.UserID, session.Role, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("Error generating new access token")
	}
	w.Header().Set("Authorization", "Bearer "+newAccessToken)

	claims.UserID = session.UserID
	claims.Role = session.Role
	return claims, nil
}

func contextWithClaims(ctx context.Context, claims *models.Claims) context.Context {
	ctx = context.WithValue(ctx, "user_id", claims.UserID)
	return context.WithValue(ctx, "role", claims.Role)
}
