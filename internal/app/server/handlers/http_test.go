package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: content required", domain.ErrValidation), http.StatusBadRequest},
		{"bad id", domain.ErrInvalidConversationID, http.StatusBadRequest},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: not a member", domain.ErrPermissionDenied), http.StatusForbidden},
		{"room missing", domain.ErrConversationNotFound, http.StatusNotFound},
		{"user missing", domain.ErrUserNotFound, http.StatusNotFound},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			writeError(rec, req, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(rec, req, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "internal error", userMessage(errors.New("dial tcp: refused")))

	wrapped := fmt.Errorf("%w: you are not a member of this conversation", domain.ErrPermissionDenied)
	assert.Equal(t, wrapped.Error(), userMessage(wrapped))
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&zero=0", nil)
	assert.Equal(t, 3, queryInt(req, "page", 1))
	assert.Equal(t, 30, queryInt(req, "limit", 30))
	assert.Equal(t, 1, queryInt(req, "zero", 1))
	assert.Equal(t, 5, queryInt(req, "missing", 5))
}
