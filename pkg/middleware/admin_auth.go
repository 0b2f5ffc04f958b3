package middleware

import (
	"crypto/subtle"
	"net/http"

	apperrors "aqevent/pkg/errors"
	apphttp "aqevent/pkg/http"
	"aqevent/pkg/logger"
)

// AdminAuth guards a handler with a static bearer token. An empty token
// rejects every request.
func AdminAuth(token string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := ""
			got := apphttp.BearerToken(r)
			switch {
			case token == "":
				reason = "Admin authentication is not configured"
			case got == "":
				reason = "Missing bearer token"
			case subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1:
				reason = "Invalid bearer token"
			}

			if reason != "" {
				log.Warn("Admin authentication failed",
					"request_id", RequestIDFrom(r.Context()),
					"reason", reason,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				_ = apphttp.WriteError(w, apperrors.Unauthorized("admin authentication required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
