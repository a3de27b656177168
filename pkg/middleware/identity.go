package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vertice-lat/maestro/pkg/composables"
	"github.com/vertice-lat/maestro/pkg/configuration"
	"github.com/vertice-lat/maestro/pkg/httpapi"
)

// Authorize consumes the caller identity forwarded by the authenticating
// gateway. Requests without a subject are rejected; credential verification
// itself happens upstream.
func Authorize() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := strings.TrimSpace(r.Header.Get(conf.SubjectHeader))
			if subject == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity", nil)
				return
			}
			identity := composables.Identity{
				Subject: subject,
				Role:    strings.TrimSpace(r.Header.Get(conf.RoleHeader)),
			}
			next.ServeHTTP(w, r.WithContext(composables.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin gates a subrouter to administrator callers.
func RequireAdmin() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := composables.UseIdentity(r.Context())
			if err != nil || !identity.IsAdmin() {
				_ = httpapi.WriteError(w, http.StatusForbidden, "FORBIDDEN", "administrator role required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
