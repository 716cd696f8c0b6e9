package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/access"
)

// RequireWorkstream gates the request on the workstream that owns the first
// path segment after prefix. Allowed requests pass through unmodified apart
// from the decision stored on the context.
func RequireWorkstream(gate *access.Gate, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target := access.TargetFromPath(r.URL.Path, prefix)
			profile, _ := access.ProfileFromContext(r.Context())

			d := gate.Authorize(target, profile)
			if !d.Allowed() {
				writeAppError(w, decisionError(d))
				return
			}
			next.ServeHTTP(w, r.WithContext(access.WithDecision(r.Context(), d)))
		})
	}
}

// RequireGlobalAdmin limits a route group to global admins.
func RequireGlobalAdmin(lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := access.ProfileFromContext(r.Context())
			if !ok || !profile.Authenticated() {
				writeAppError(w, internal.NewUnauthorizedError(access.ReasonAuthenticationRequired, internal.ErrCodeAuthenticationRequired))
				return
			}
			if !profile.IsGlobalAdmin {
				lg.Warn("admin console denied", "user_id", profile.UserID, "path", r.URL.Path)
				writeAppError(w, internal.ErrGlobalAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func decisionError(d access.Decision) *internal.AppError {
	switch {
	case d.Status == http.StatusUnauthorized:
		return internal.NewUnauthorizedError(d.Reason, internal.ErrCodeAuthenticationRequired)
	case d.Reason == access.ReasonNoWorkstreamAccess:
		return internal.NewForbiddenError(d.Reason, internal.ErrCodeNoWorkstreamAccess)
	default:
		return internal.NewForbiddenError(d.Reason, internal.ErrCodeWorkstreamAccessRequired)
	}
}
