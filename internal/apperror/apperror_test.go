package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindAndCode(t *testing.T) {
	a := New(KindConflict, "EMAIL_ALREADY_EXISTS", "email is already registered")
	b := New(KindConflict, "EMAIL_ALREADY_EXISTS", "different wording")
	c := New(KindConflict, "OTHER", "email is already registered")

	assert.ErrorIs(t, fmt.Errorf("wrap: %w", a), b)
	assert.NotErrorIs(t, a, c)
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindConflict:        http.StatusConflict,
		KindNotFound:        http.StatusNotFound,
		KindRateLimited:     http.StatusTooManyRequests,
		KindServerFault:     http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}
