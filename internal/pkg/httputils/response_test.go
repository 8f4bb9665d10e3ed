package httputils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tush00nka/chathub/api/response"
	"tush00nka/chathub/internal/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func TestResponseError_Kinds(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseError(rec, apperror.Forbidden("You are not an admin"))

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "You are not an admin", body.Message)
	require.Equal(t, "FORBIDDEN", body.Kind)
	require.False(t, body.Success)
}

func TestResponseError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseError(rec, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "pq:")
}

func TestResponseData(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseData(rec, http.StatusCreated, map[string]int{"id": 1}, "Created")

	var body response.DataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, http.StatusCreated, body.StatusCode)
	require.Equal(t, "Created", body.Message)
}
