package outbound

import (
	"time"

	"github.com/google/uuid"
)

// JWTPort defines JWT operations.
type JWTPort interface {
	// GenerateAccessToken generates an access token.
	GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error)

	// ValidateAccessToken validates an access token.
	ValidateAccessToken(token string) (*JWTClaims, error)
}

// JWTClaims represents JWT token claims.
type JWTClaims struct {
	UserID uuid.UUID
	Email  string
}

// PasswordHasherPort hashes and verifies credentials.
type PasswordHasherPort interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
