package middleware

import (
	"net/http"
	"strings"

	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth validates the single shared admin credential. The password is
// taken from the Authorization header ("Bearer <password>") and compared
// against the configured bcrypt hash. On success the request context is
// marked as admin; the core services never inspect credentials themselves.
func AdminAuth(passwordHash string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(parts[1])); err != nil {
				logger.Warn("Admin auth failed",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseUnauthorized(w, "Invalid admin credential")
				return
			}

			ctx := utils.SetAdminContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
