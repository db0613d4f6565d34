package identity

import (
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// Domain errors for identity.
var (
	ErrUserNotFound       = apperrors.Kind(apperrors.ErrNotFound, "user not found")
	ErrEmailTaken         = apperrors.Kind(apperrors.ErrConflict, "email already registered")
	ErrInvalidCredentials = apperrors.Kind(apperrors.ErrUnauthorized, "invalid email or password")
	ErrInvalidToken       = apperrors.Kind(apperrors.ErrUnauthorized, "invalid or expired token")
)
