package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
	"github.com/calshare/server/internal/port/outbound"
)

// Recorder receives authentication events.
type Recorder interface {
	RecordAuthEvent(event string)
}

// Domain implements the identity provider: local email and password
// accounts with bearer tokens.
type Domain struct {
	userDB   outbound.UserDatabasePort
	hasher   outbound.PasswordHasherPort
	jwt      outbound.JWTPort
	recorder Recorder
	logger   *zap.Logger
}

// NewDomain creates a new identity domain. recorder may be nil.
func NewDomain(
	userDB outbound.UserDatabasePort,
	hasher outbound.PasswordHasherPort,
	jwt outbound.JWTPort,
	recorder Recorder,
	logger *zap.Logger,
) *Domain {
	return &Domain{
		userDB:   userDB,
		hasher:   hasher,
		jwt:      jwt,
		recorder: recorder,
		logger:   logger,
	}
}

var _ inbound.IdentityDomain = (*Domain)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs the user in.
func (d *Domain) Register(ctx context.Context, in *inbound.RegisterInput) (*inbound.AuthOutput, error) {
	input := *in
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := inbound.Validate(&input); err != nil {
		return nil, err
	}

	hash, err := d.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := d.userDB.Create(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	d.record("register")
	d.logger.Info("user registered", zap.String("user_id", user.ID.String()))

	return d.issue(user)
}

// Login exchanges credentials for a token.
func (d *Domain) Login(ctx context.Context, in *inbound.LoginInput) (*inbound.AuthOutput, error) {
	input := *in
	input.Email = normalizeEmail(input.Email)
	if err := inbound.Validate(&input); err != nil {
		return nil, err
	}

	user, err := d.userDB.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			d.record("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := d.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		d.record("login_failed")
		return nil, ErrInvalidCredentials
	}

	d.record("login_success")
	return d.issue(user)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (d *Domain) Authenticate(ctx context.Context, token string) (*inbound.Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := d.jwt.ValidateAccessToken(token)
	if err != nil {
		d.record("token_invalid")
		return nil, ErrInvalidToken
	}
	return &inbound.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// GetMe returns the authenticated user.
func (d *Domain) GetMe(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := d.userDB.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (d *Domain) issue(user *model.User) (*inbound.AuthOutput, error) {
	token, expiresAt, err := d.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &inbound.AuthOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user.ToOutput(),
	}, nil
}

func (d *Domain) record(event string) {
	if d.recorder != nil {
		d.recorder.RecordAuthEvent(event)
	}
}
