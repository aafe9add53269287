package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognized by the access control gate.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a row in the PostgreSQL users table.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never serialize
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claims is the signed session payload carried in the cookie. The server
// keeps no session table; every request re-verifies the signature.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminSetupRequest is the JSON body for POST /api/admin/setup.
type AdminSetupRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}
