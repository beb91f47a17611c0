// Package profile serves the signed-in user's own account: reading and
// editing profile fields and changing the password.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskdesk/internal/auth"
	"github.com/redmonkez12/taskdesk/internal/user"
	"github.com/redmonkez12/taskdesk/internal/validation"
)

const maxBioLength = 200

// UpdateInput is the body of PUT /api/users/profile. Omitted bio or avatar
// keep their stored value; an empty string clears them.
type UpdateInput struct {
	Name   string  `json:"name"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

type Service struct {
	users user.Repository
	auth  *auth.Service
}

func NewService(users user.Repository, authService *auth.Service) *Service {
	return &Service{users: users, auth: authService}
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (*user.User, error) {
	update, err := in.toUpdate()
	if err != nil {
		return nil, err
	}

	u, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// ChangePassword returns the replacement token; the caller's current token is revoked.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, in auth.ChangePasswordInput) (string, error) {
	return s.auth.ChangePassword(ctx, userID, in)
}

func (in UpdateInput) toUpdate() (user.ProfileUpdate, error) {
	v := validation.New()

	update := user.ProfileUpdate{Name: strings.TrimSpace(in.Name)}
	if v.Required("name", update.Name) {
		v.Length("name", update.Name, 2, 50)
	}

	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		v.Check(utf8.RuneCountInString(bio) <= maxBioLength, "bio", fmt.Sprintf("bio must be at most %d characters", maxBioLength))
		update.Bio = &bio
	}

	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		if avatar != "" {
			v.URL("avatar", avatar)
		}
		update.Avatar = &avatar
	}

	if err := v.Err(); err != nil {
		return user.ProfileUpdate{}, err
	}
	return update, nil
}
