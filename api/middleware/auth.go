package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/smartlist-backend/api/responses"
	pkgAuth "github.com/angelmondragon/smartlist-backend/pkg/auth"
	"github.com/angelmondragon/smartlist-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
)

// Auth validates the bearer token and puts its user id on the request context.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
