package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
)

func TestStatusFromCode(t *testing.T) {
	tests := []struct {
		code apperrors.ErrorCode
		want int
	}{
		{apperrors.ErrCodeLinkNotFound, http.StatusNotFound},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeLinkDisabled, http.StatusForbidden},
		{apperrors.ErrCodeLinkExpired, http.StatusGone},
		{apperrors.ErrCodePasswordMissing, http.StatusUnauthorized},
		{apperrors.ErrCodePasswordInvalid, http.StatusUnauthorized},
		{apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.ErrCodeMissingRequired, http.StatusBadRequest},
		{apperrors.ErrCodeDuplicateAccessCode, http.StatusConflict},
		{apperrors.ErrCodeGenerationExhausted, http.StatusInternalServerError},
		{apperrors.ErrCodeDatabase, http.StatusInternalServerError},
		{apperrors.ErrorCode("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromCode(tt.code))
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("writes AppError with mapped status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.LinkExpired())

		assert.Equal(t, http.StatusGone, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodeLinkExpired, resp.Code)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("pq: connection reset"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodeInternal, resp.Code)
		assert.NotContains(t, resp.Error, "pq:", "internal detail must not leak")
	})
}
