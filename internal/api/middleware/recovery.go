package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/project-manager/engine/internal/api/types"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
)

// Recovery logs panics and answers with a JSON 500.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered",
				zap.String("path", r.URL.Path),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			types.WriteError(w, http.StatusInternalServerError, appErr.CodeInternal, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
