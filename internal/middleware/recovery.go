package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"lab-backend/internal/apperr"
	"lab-backend/internal/logger"
	"lab-backend/pkg/httpjson"
)

func PanicRecovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := log.WithField(r.Context(), "stack", string(debug.Stack()))
					log.Error(ctx, "panic recovered", fmt.Errorf("%v", rec))
					httpjson.WriteError(r.Context(), nil, w, apperr.New(apperr.CodeInternal, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
