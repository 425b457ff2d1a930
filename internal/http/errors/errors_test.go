package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/forms"
	"github.com/dropDatabas3/multilogin/internal/modules"
)

func TestFromError_MapsDomainSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code string
		st   int
	}{
		{fmt.Errorf("get: %w", repository.ErrNotFound), "BLOCK_NOT_FOUND", http.StatusNotFound},
		{stderrors.Join(repository.ErrInvalidInput, stderrors.New("label too long")), "INVALID_SETTINGS", http.StatusUnprocessableEntity},
		{repository.ErrConflict, "CONFLICT", http.StatusConflict},
		{fmt.Errorf("%w: bad name", forms.ErrMalformedSubmission), "INVALID_FORMAT", http.StatusBadRequest},
		{modules.ErrUnknownModule, "UNKNOWN_MODULE", http.StatusNotFound},
		{stderrors.New("boom"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrForbidden), "FORBIDDEN", http.StatusForbidden},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
		assert.Equal(t, tc.st, got.HTTPStatus, tc.err.Error())
	}
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	e := ErrBadRequest.WithDetail("x")
	assert.Equal(t, "x", e.Detail)
	assert.Empty(t, ErrBadRequest.Detail)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrRateLimitExceeded.WithDetail("slow down"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
	assert.Equal(t, "slow down", body["detail"])
}
