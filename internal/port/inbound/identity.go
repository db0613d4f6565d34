package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
)

// RegisterInput represents a registration request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput represents a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthOutput is returned by register and login.
type AuthOutput struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        *model.UserOutput `json:"user"`
}

// Identity is the authenticated principal resolved from a credential.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// IdentityDomain defines the identity provider interface.
type IdentityDomain interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	Authenticate(ctx context.Context, token string) (*Identity, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*model.User, error)
}
