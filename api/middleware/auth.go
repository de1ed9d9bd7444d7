package middleware

import (
	"net/http"
	"strings"

	"github.com/Ramchandran06/E-commerce-backend/api/responses"
	pkgAuth "github.com/Ramchandran06/E-commerce-backend/pkg/auth"
	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

const bearerScheme = "bearer"

var errMissingCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")

// Auth rejects requests without a valid access token. Downstream handlers
// read the caller through UserIDFromContext and RoleFromContext.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				responses.WriteError(ctx, logg, w, errMissingCredentials)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			userID, role := claims.UserID.String(), claims.Role.String()
			ctx = WithRole(WithUserID(ctx, userID), role)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, userID), role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts "Bearer <token>" in any case, or a bare token.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, bearerScheme) {
		return "", false
	}
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, bearerScheme) {
		header = strings.TrimSpace(rest)
	}
	return header, header != ""
}
