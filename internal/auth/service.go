package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/user"
	"github.com/redmonkez12/taskdesk/internal/validation"
)

const minPasswordLength = 6

// AuthResult is returned by the operations that start a session.
type AuthResult struct {
	Token string
	User  *user.User
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// Service handles authentication business logic
type Service struct {
	users             user.Repository
	tokens            TokenService
	hasher            *PasswordHasher
	passwordResetRepo *PasswordResetRepository
	emailService      EmailService
	logger            *logging.Logger
	tokenDuration     time.Duration
	now               func() time.Time
}

func NewService(
	users user.Repository,
	tokens TokenService,
	hasher *PasswordHasher,
	passwordResetRepo *PasswordResetRepository,
	emailService EmailService,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		users:             users,
		tokens:            tokens,
		hasher:            hasher,
		passwordResetRepo: passwordResetRepo,
		emailService:      emailService,
		logger:            logger,
		tokenDuration:     tokenDuration,
		now:               time.Now,
	}
}

// Register creates a new account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := validation.NormalizeEmail(in.Email)

	v := validation.New()
	if v.Required("name", name) {
		v.Length("name", name, 2, 50)
	}
	v.Email("email", email)
	v.Password("password", in.Password, minPasswordLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, user.CreateParams{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(newUser)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: newUser}, nil
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)

	v := validation.New()
	v.Email("email", email)
	v.Required("password", in.Password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	existingUser, err := s.users.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.hasher.VerifyDummy(in.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(existingUser.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	if !existingUser.IsActive {
		return nil, ErrAccountDisabled
	}

	existingUser.PasswordHash = ""

	token, err := s.IssueToken(existingUser)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: existingUser}, nil
}

// ChangePassword re-verifies the current password, stores the new one and
// returns a fresh token. Tokens issued before the change stop working.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) (string, error) {
	v := validation.New()
	v.Required("currentPassword", in.CurrentPassword)
	v.Password("newPassword", in.NewPassword, minPasswordLength)
	if err := v.Err(); err != nil {
		return "", err
	}

	existingUser, err := s.users.GetCredentialsByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(existingUser.PasswordHash, in.CurrentPassword) {
		return "", ErrIncorrectPassword
	}

	if err := s.setPassword(ctx, existingUser, in.NewPassword); err != nil {
		return "", err
	}

	return s.IssueToken(existingUser)
}

// RequestPasswordReset initiates the password reset process.
// Unknown or disabled accounts are silently ignored so the caller cannot
// probe which emails exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	v := validation.New()
	v.Email("email", email)
	if err := v.Err(); err != nil {
		return err
	}

	existingUser, err := s.users.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("failed to get user for password reset", "error", err)
		}
		return nil
	}
	if !existingUser.IsActive {
		return nil
	}

	token, err := generateRandomToken()
	if err != nil {
		s.logger.Warn("failed to generate password reset token", "error", err)
		return nil
	}

	if err := s.passwordResetRepo.Store(ctx, existingUser.ID, token); err != nil {
		s.logger.Warn("failed to store password reset token", "error", err)
		return nil
	}

	// Send password reset email in goroutine (non-blocking)
	go func() {
		emailCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.emailService.SendPasswordResetEmail(emailCtx, existingUser.Email, existingUser.Name, token); err != nil {
			s.logger.Warn("failed to send password reset email", "user_id", existingUser.ID.String(), "error", err)
		}
	}()

	return nil
}

// ResetPassword sets a new password using a valid reset token.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	v := validation.New()
	v.Required("token", in.Token)
	v.Password("newPassword", in.NewPassword, minPasswordLength)
	if err := v.Err(); err != nil {
		return err
	}

	userID, err := s.passwordResetRepo.Consume(ctx, in.Token)
	if err != nil {
		if errors.Is(err, ErrPasswordResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to get password reset token: %w", err)
	}

	existingUser, err := s.users.GetCredentialsByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.setPassword(ctx, existingUser, in.NewPassword); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	return nil
}

// IssueToken mints a bearer token for u.
func (s *Service) IssueToken(u *user.User) (string, error) {
	token, err := s.tokens.CreateToken(u, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}
	return token, nil
}

// setPassword stores a new hash and moves u.PasswordChangedAt forward by at
// least one millisecond, so every token minted before the call is revoked.
func (s *Service) setPassword(ctx context.Context, u *user.User, password string) error {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := s.now().UTC().Truncate(time.Millisecond)
	if !changedAt.After(u.PasswordChangedAt) {
		changedAt = u.PasswordChangedAt.Truncate(time.Millisecond).Add(time.Millisecond)
	}

	if err := s.users.UpdatePassword(ctx, u.ID, passwordHash, changedAt); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	u.PasswordChangedAt = changedAt
	return nil
}
