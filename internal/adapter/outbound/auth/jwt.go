package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/calshare/server/internal/port/outbound"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret            string
	Issuer            string
	AccessTokenExpiry time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Issuer:            "calshare",
		AccessTokenExpiry: 24 * time.Hour,
	}
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// jwtManager implements outbound.JWTPort with HS256 tokens.
type jwtManager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(cfg *JWTConfig) outbound.JWTPort {
	if cfg == nil {
		cfg = DefaultJWTConfig()
	}
	if cfg.AccessTokenExpiry <= 0 {
		cfg.AccessTokenExpiry = DefaultJWTConfig().AccessTokenExpiry
	}
	return &jwtManager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		expiry: cfg.AccessTokenExpiry,
		now:    time.Now,
	}
}

// GenerateAccessToken generates an access token.
func (m *jwtManager) GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.expiry)

	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken validates an access token.
func (m *jwtManager) ValidateAccessToken(tokenString string) (*outbound.JWTClaims, error) {
	claims := &accessClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	return &outbound.JWTClaims{
		UserID: userID,
		Email:  claims.Email,
	}, nil
}

// Compile-time check
var _ outbound.JWTPort = (*jwtManager)(nil)
