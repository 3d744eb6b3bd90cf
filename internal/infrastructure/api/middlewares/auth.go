package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/fundlane/fundlane/internal/errors"
	http2 "github.com/fundlane/fundlane/internal/infrastructure/api/http"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and stores the subject user id
// in the request context. Tokens are HS256 signed with the shared secret.
func AuthMiddleware(jwtSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.GetLogger()
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				logger.Warn().Msg(errors.ErrAuthorizationRequired)
				errors.HandleHTTPError(w, errors.NewUnauthorizedError("missing bearer token"))
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn().Err(err).Msg("rejected request with invalid token")
				errors.HandleHTTPError(w, errors.NewUnauthorizedError("invalid token"))
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				errors.HandleHTTPError(w, errors.NewUnauthorizedError("token has no subject"))
				return
			}

			ctx := context.WithValue(r.Context(), http2.UserIDContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, or "" outside the
// auth middleware.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(http2.UserIDContextKey).(string)
	return id
}
