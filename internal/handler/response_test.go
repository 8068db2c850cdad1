package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrepreneurhub/internal/model"
	"entrepreneurhub/pkg/apierror"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.APIError {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.False(t, body.Success)
	return *body.Error
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierror.Validation("bad", "title: required"), http.StatusBadRequest, apierror.CodeValidation},
		{"duplicate user", model.ErrUserAlreadyExists, http.StatusBadRequest, "USER_EXISTS"},
		{"wrapped credentials", fmt.Errorf("login: %w", model.ErrInvalidCredentials), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"course", model.ErrCourseNotFound, http.StatusNotFound, "COURSE_NOT_FOUND"},
		{"already enrolled", model.ErrAlreadyEnrolled, http.StatusBadRequest, "ALREADY_ENROLLED"},
		{"not enrolled", model.ErrNotEnrolled, http.StatusForbidden, "NOT_ENROLLED"},
		{"event", model.ErrEventNotFound, http.StatusNotFound, "EVENT_NOT_FOUND"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, apierror.CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}
}

func TestWriteError_DoesNotLeakInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password_hash column missing"))

	assert.NotContains(t, rec.Body.String(), "password_hash")
	assert.Equal(t, "unexpected server error", decodeError(t, rec).Message)
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst model.LoginRequest
		err := decodeAndValidate(r, &dst)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "request body is required", apiErr.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
		var dst model.LoginRequest
		var apiErr *apierror.APIError
		require.ErrorAs(t, decodeAndValidate(r, &dst), &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})

	t.Run("details use json names", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x"}`))
		var dst model.CourseRequest
		var apiErr *apierror.APIError
		require.ErrorAs(t, decodeAndValidate(r, &dst), &apiErr)
		assert.Contains(t, apiErr.Details, "description: required")
		assert.Contains(t, apiErr.Details, "price: required")
		assert.NotContains(t, apiErr.Details, "Description")
	})

	t.Run("register accepts any non-empty email", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","email":"ada-at-home","password":"pw"}`))
		var dst model.RegisterRequest
		require.NoError(t, decodeAndValidate(r, &dst))
		assert.Equal(t, "ada-at-home", dst.Email)
	})

	t.Run("register requires email", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","password":"pw"}`))
		var dst model.RegisterRequest
		var apiErr *apierror.APIError
		require.ErrorAs(t, decodeAndValidate(r, &dst), &apiErr)
		assert.Contains(t, apiErr.Details, "email: required")
	})

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"course_id":"c1","rating":5}`))
		var dst model.ReviewRequest
		require.NoError(t, decodeAndValidate(r, &dst))
		assert.Equal(t, 5, dst.Rating)
	})
}

func TestParseIntOrDefault(t *testing.T) {
	assert.Equal(t, 3, parseIntOrDefault(" 3 ", 1))
	assert.Equal(t, 1, parseIntOrDefault("abc", 1))
	assert.Equal(t, 50, parseIntOrDefault("", 50))
}
