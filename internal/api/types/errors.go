package types

import (
	"net/http"

	appErr "github.com/project-manager/engine/pkg/errors"
)

// FromAppError maps err to a status and body. Internal messages are replaced
// with a generic one so storage details never reach the client.
func FromAppError(err error) (int, ErrorResponse) {
	ae := appErr.As(err)
	status := ae.Status()
	msg := ae.Message
	if status >= http.StatusInternalServerError && ae.Code != appErr.CodeUnavailable {
		msg = "Internal server error"
	}
	return status, ErrorResponse{Error: msg, Code: string(ae.Code)}
}

// WriteError writes a JSON error body with an explicit code.
func WriteError(w http.ResponseWriter, status int, code appErr.Code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: string(code)})
}
