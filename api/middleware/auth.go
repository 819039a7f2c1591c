package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fleetparts/fleetparts-backend/api/responses"
	pkgAuth "github.com/fleetparts/fleetparts-backend/pkg/auth"
	"github.com/fleetparts/fleetparts-backend/pkg/auth/session"
	"github.com/fleetparts/fleetparts-backend/pkg/config"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// claims. Tokens are minted by the external identity service; this layer
// only verifies the signature. A non-nil verifier additionally requires a
// live server-side session for the token's id.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
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

			if verifier != nil {
				if claims.ID == "" {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
					return
				}
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxOperatorID, claims.OperatorID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			if claims.AssignedVehicleID != nil {
				ctx = context.WithValue(ctx, ctxVehicleID, claims.AssignedVehicleID.String())
			}

			if logg != nil {
				fields := map[string]any{
					"operator_id": claims.OperatorID.String(),
					"actor_role":  string(claims.Role),
				}
				if claims.AssignedVehicleID != nil {
					fields["assigned_vehicle_id"] = claims.AssignedVehicleID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
