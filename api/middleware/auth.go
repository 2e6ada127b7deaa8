package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/craftmarket-backend/api/responses"
	pkgAuth "github.com/angelmondragon/craftmarket-backend/pkg/auth"
	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
)

// Auth validates a bearer token and turns its claims into the request Actor.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
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
			actor := claims.Actor()
			if actor.IsSystem() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"))
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithUserID(ctx, actor.UserID.String())
				ctx = logg.WithActorRole(ctx, string(actor.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
