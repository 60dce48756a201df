package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

type User struct {
	ID         int        `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Password   string     `json:"-"`
	UserTypeID int        `json:"-"`
	UserType   *Reference `json:"user_type,omitempty"`
	IsActive   bool       `json:"is_active"`
	DateJoined time.Time  `json:"date_joined"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// UserInput carries a user create/update payload. Pointer fields are
// applied only when present, so partial updates merge attribute-wise.
type UserInput struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Password   *string `json:"password"`
	UserTypeID *int    `json:"user_type_id"`
	IsActive   *bool   `json:"is_active"`
}

type Claims struct {
	UserID int `json:"user_id"`
	Role   int `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       int       `json:"user_id"`
	Role         int       `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignInRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
