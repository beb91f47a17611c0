package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(u *user.User, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	UserID          uuid.UUID
	Email           string
	IssuedAt        time.Time
	ExpiresAt       time.Time
	// PasswordVersion is the account's password change time in Unix
	// milliseconds when the token was minted.
	PasswordVersion int64
}

func passwordVersion(u *user.User) int64 {
	return u.PasswordChangedAt.UnixMilli()
}

// EmailService defines the interface for email operations
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, name, token string) error
}

// NewTokenService builds the token implementation selected by AUTH_TOKEN_FORMAT.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.TokenFormat {
	case config.TokenFormatJWT:
		return NewJWTService(cfg.JWTSecret, cfg.Issuer)
	case config.TokenFormatPaseto:
		return NewPasetoService(cfg.PasetoKey)
	default:
		return nil, fmt.Errorf("unsupported token format %q", cfg.TokenFormat)
	}
}
