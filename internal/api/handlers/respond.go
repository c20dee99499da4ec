package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/project-manager/engine/internal/api/types"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	types.WriteJSON(w, status, v)
}

// writeError maps err to its HTTP status. Server-side failures are logged;
// their details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := types.FromAppError(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return appErr.Wrap(err, appErr.CodeTooLarge, "Request body too large")
		}
		return appErr.Wrap(err, appErr.CodeInvalid, "Invalid JSON body")
	}
	return nil
}

// MethodNotAllowed answers verbs a resource does not support.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	types.WriteError(w, http.StatusMethodNotAllowed, appErr.CodeMethodNotAllowed, "Method not allowed")
}

// NotFound answers paths no route matches.
func NotFound(w http.ResponseWriter, r *http.Request) {
	types.WriteError(w, http.StatusNotFound, appErr.CodeNotFound, "Not found")
}
