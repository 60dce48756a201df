package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/exp/rand"
)

type Manager struct {
	signingKey string
}

func NewManager(signingKey string) (*Manager, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}
	return &Manager{signingKey: signingKey}, nil
}

type accessClaims struct {
	UserID int `json:"user_id"`
	Role   int `json:"role"`
	jwt.StandardClaims
}

// NewAccessToken issues a signed access token carrying the user id and
// role id resolved from the user's user_type.
func (m *Manager) NewAccessToken(userID, role int, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	return token.SignedString([]byte(m.signingKey))
}

// NewResetToken issues a short-lived token for the password reset link.
func (m *Manager) NewResetToken(userID int, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   strconv.Itoa(userID),
		Audience:  "password_reset",
		ExpiresAt: time.Now().Add(ttl).Unix(),
		IssuedAt:  time.Now().Unix(),
	})
	return token.SignedString([]byte(m.signingKey))
}

// ParseResetToken validates a reset token and returns the user id.
func (m *Manager) ParseResetToken(tokenString string) (int, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid reset token")
	}
	if claims.Audience != "password_reset" {
		return 0, errors.New("invalid reset token")
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errors.New("invalid reset token")
	}
	return userID, nil
}

// NewRefreshToken returns an opaque token persisted with the session.
func (m *Manager) NewRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", b), nil
}
