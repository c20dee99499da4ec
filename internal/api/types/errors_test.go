package types

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/project-manager/engine/pkg/errors"
)

func TestFromAppError(t *testing.T) {
	status, body := FromAppError(appErr.NotFound("Project not found"))
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, ErrorResponse{Error: "Project not found", Code: "not_found"}, body)

	status, body = FromAppError(fmt.Errorf("ctx: %w", appErr.Invalid("Project ID is required")))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Project ID is required", body.Error)

	status, body = FromAppError(errors.New("pq: connection refused"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, ErrorResponse{Error: "Internal server error", Code: "internal"}, body)
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusMethodNotAllowed, appErr.CodeMethodNotAllowed, "Method not allowed")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"Method not allowed","code":"method_not_allowed"}`, rr.Body.String())
}
