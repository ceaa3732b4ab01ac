package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/jwt"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// bcryptCost is the work factor for password hashing.
const bcryptCost = 12

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	FindAll(ctx context.Context) ([]models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, email, passwordHash string) (*models.UserDB, error)
	Update(ctx context.Context, userID uuid.UUID, username, email *string) (*models.UserDB, error)
}

// JWTCodec signs and verifies tokens of one class.
type JWTCodec interface {
	Generate(ctx context.Context, userID uuid.UUID, email string) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// AuthService handles signup, credential verification, session issuance,
// and access-token refresh.
type AuthService struct {
	reader     UserReader
	writer     UserWriter
	accessJWT  JWTCodec
	refreshJWT JWTCodec
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, accessJWT, refreshJWT JWTCodec) *AuthService {
	return &AuthService{
		reader:     reader,
		writer:     writer,
		accessJWT:  accessJWT,
		refreshJWT: refreshJWT,
	}
}

// Register creates a new user after checking password confirmation and
// email uniqueness. The stored password is a bcrypt hash.
func (svc *AuthService) Register(ctx context.Context, username, email, password, repeatPassword string) (*models.UserDB, error) {
	if password != repeatPassword {
		return nil, ErrPasswordMismatch
	}

	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Errorw("user already exists", "email", email)
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Save(ctx, username, email, string(hashedPassword))
	if err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and issues the session token pair: one
// access token and one refresh token signed from the same payload with
// distinct secrets and lifetimes. An unknown email and a wrong password
// both return ErrInvalidCredentials so the caller cannot tell them apart.
func (svc *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", "", err
	}
	if user == nil {
		logger.Log.Errorw("invalid credentials", "email", email)
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "email", email)
		return "", "", ErrInvalidCredentials
	}

	accessToken, err = svc.accessJWT.Generate(ctx, user.UserID, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate access token", "err", err)
		return "", "", err
	}

	refreshToken, err = svc.refreshJWT.Generate(ctx, user.UserID, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate refresh token", "err", err)
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// Refresh verifies the refresh token against the refresh secret and mints a
// new access token from its claims; the refresh token's validity stands in
// for re-authentication. Every verification failure collapses into
// ErrInvalidRefreshToken.
func (svc *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := svc.refreshJWT.GetClaims(ctx, refreshToken)
	if err != nil {
		logger.Log.Errorw("refresh token verification failed", "err", err)
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := svc.accessJWT.Generate(ctx, claims.UserID, claims.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate access token", "err", err)
		return "", err
	}

	return accessToken, nil
}
