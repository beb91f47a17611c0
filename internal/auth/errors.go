package auth

import (
	"github.com/redmonkez12/taskdesk/internal/apperror"
	"github.com/redmonkez12/taskdesk/internal/httputil"
)

// Gate rejections.
var (
	ErrMissingAuth       = apperror.New(apperror.KindUnauthenticated, httputil.CodeMissingAuth, "access denied, no token provided")
	ErrInvalidAuthHeader = apperror.New(apperror.KindUnauthenticated, httputil.CodeInvalidAuthHeader, "invalid authorization header format")
	ErrSessionExpired    = apperror.New(apperror.KindUnauthenticated, httputil.CodeTokenExpired, "token has expired, please log in again")
	ErrSessionInvalid    = apperror.New(apperror.KindUnauthenticated, httputil.CodeInvalidToken, "invalid token")
	ErrSessionRevoked    = apperror.New(apperror.KindUnauthenticated, httputil.CodeTokenRevoked, "token is no longer valid, please log in again")
	ErrUserNotFound      = apperror.New(apperror.KindUnauthenticated, httputil.CodeUserNotFound, "token is valid but user no longer exists")
	ErrAccountDisabled   = apperror.New(apperror.KindForbidden, httputil.CodeAccountDisabled, "this account has been deactivated")
)

// Credential operations.
var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthenticated, httputil.CodeInvalidCredentials, "invalid email or password")
	ErrIncorrectPassword  = apperror.New(apperror.KindUnauthenticated, httputil.CodeIncorrectPassword, "current password is incorrect")
	ErrEmailTaken         = apperror.New(apperror.KindConflict, httputil.CodeEmailAlreadyExists, "email is already registered")
	ErrInvalidResetToken  = apperror.New(apperror.KindValidation, httputil.CodeInvalidResetToken, "invalid or expired reset token")
	ErrCooldownActive     = apperror.New(apperror.KindRateLimited, httputil.CodeCooldownActive, "please wait before requesting another reset")
)
