package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nohumanman/descenders-modding/internal/api/apierr"
	"github.com/nohumanman/descenders-modding/internal/model"
)

// SessionCookieName is the cookie holding the dashboard credential
const SessionCookieName = "session"

type contextKey string

const (
	credentialContextKey contextKey = "credential"
	verdictContextKey    contextKey = "verdict"
)

// VerdictResolver decides whether a credential may perform privileged operations
type VerdictResolver interface {
	Resolve(ctx context.Context, credential string) (model.Verdict, error)
}

// RequireAuthorized rejects requests whose credential does not resolve to
// AUTHORIZED. Resolution failures keep their own status codes so a provider
// outage is not reported as a missing login.
func RequireAuthorized(resolver VerdictResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := ExtractCredential(r)

			verdict, err := resolver.Resolve(r.Context(), credential)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			switch verdict {
			case model.VerdictAuthorized:
			case model.VerdictUnauthorized:
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			default:
				apierr.WriteError(w, apierr.NewUnauthenticatedError())
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, credentialContextKey, credential)
			ctx = context.WithValue(ctx, verdictContextKey, verdict)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractCredential returns the session credential from the request
func ExtractCredential(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// Fall back to cookie
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetCredential returns the credential that passed RequireAuthorized
func GetCredential(ctx context.Context) string {
	credential, _ := ctx.Value(credentialContextKey).(string)
	return credential
}

// GetVerdict returns the verdict stored by RequireAuthorized
func GetVerdict(ctx context.Context) model.Verdict {
	verdict, _ := ctx.Value(verdictContextKey).(model.Verdict)
	return verdict
}
