package providers

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// AdminAuthorizer decides whether a credential taken from the Authorization
// header grants admin access.
type AdminAuthorizer interface {
	IsAdmin(credential string) (bool, error)
}

// ExtractCredential accepts both "Bearer <token>" and a bare token.
func ExtractCredential(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func AdminOnly(authz AdminAuthorizer, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := ExtractCredential(r)
			if credential == "" {
				writeAuthError(w, http.StatusUnauthorized, "No authentication token provided")
				return
			}

			ok, err := authz.IsAdmin(credential)
			if err != nil {
				logger.Errorf(TypeApp, "Admin check failed: %s", err)
				writeAuthError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if !ok {
				writeAuthError(w, http.StatusForbidden, "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
