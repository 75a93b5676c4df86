package middleware

import (
	"context"
	"net/http"
)

type contextKeyType string

const operatorIDKey contextKeyType = "operator_id"

// OperatorFromHeader lifts the X-Operator-ID header into the request context so
// downstream middleware and handlers can attribute actions to the register
// operator. Session resolution itself happens upstream; this middleware only
// propagates the already-resolved identity.
func OperatorFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Operator-ID"); id != "" {
			ctx := context.WithValue(r.Context(), operatorIDKey, id)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// OperatorIDFromContext extracts the operator identity stored by OperatorFromHeader.
// Returns an empty string if none is set.
func OperatorIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(operatorIDKey).(string); ok {
		return id
	}
	return ""
}
