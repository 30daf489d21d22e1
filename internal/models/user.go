package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

type User struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	AvatarPath *string   `json:"avatar,omitempty"`
	Password   string    `json:"password,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Public strips fields that must never leave the service.
func (u User) Public() User {
	u.Password = ""
	return u
}

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       int       `json:"user_id"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignUpRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Avatar    string `json:"avatar,omitempty"` // base64 payload
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserFilter narrows user listings. Matches are case-insensitive
// substring matches.
type UserFilter struct {
	Username  string
	FirstName string
	LastName  string
}
