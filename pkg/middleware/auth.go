package middleware

import (
	"net/http"
	"strings"

	"github.com/yuimaru-ship/storefront/pkg/response"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

// RequireSessionKey rejects requests whose session lacks key. API requests
// get a 401 envelope; page requests are redirected to loginPath.
func RequireSessionKey(key, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.FromCtx(r).GetString(key) != "" {
				next.ServeHTTP(w, r)
				return
			}
			if strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json") {
				response.Unauthorized(w)
				return
			}
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
		})
	}
}
