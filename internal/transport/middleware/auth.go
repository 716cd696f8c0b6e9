package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/auth"
	"github.com/frahmantamala/property-hub/internal/transport"
	"github.com/frahmantamala/property-hub/pkg/logger"
)

// Authenticate verifies the bearer credential, resolves the caller's profile
// under timeout and stores both on the request context. Every failure,
// including a slow or broken identity store, is a 401.
func Authenticate(verifier auth.Verifier, resolver access.ProfileResolver, timeout time.Duration, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.BearerToken(r)
			if token == "" {
				writeAppError(w, internal.NewUnauthorizedError(access.ReasonAuthenticationRequired, internal.ErrCodeAuthenticationRequired))
				return
			}

			subjectID, err := verifier.Verify(token)
			if err != nil {
				lg.Warn("credential rejected",
					"cause", auth.FailureCause(err),
					"path", r.URL.Path,
					"error", err)
				writeAppError(w, internal.ErrInvalidCredential)
				return
			}

			ctx, cancel := internal.WithTimeout(r.Context(), timeout)
			profile, err := resolver.Resolve(ctx, subjectID)
			cancel()
			if err != nil {
				if errors.Is(err, access.ErrUnknownSubject) {
					lg.Warn("unknown subject", "user_id", subjectID)
					writeAppError(w, internal.ErrUnknownSubject)
					return
				}
				lg.Error("profile resolution failed",
					"user_id", subjectID,
					"error", err)
				writeAppError(w, internal.NewStoreUnavailableError(err))
				return
			}

			reqCtx := internal.ContextWithSubjectID(r.Context(), subjectID)
			reqCtx = access.WithProfile(reqCtx, profile)
			reqCtx = logger.With(reqCtx, "userID", subjectID)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		})
	}
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
