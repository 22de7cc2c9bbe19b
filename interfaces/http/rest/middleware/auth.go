package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/common"
)

// Headers the Lambda entrypoint sets from the verified API Gateway
// authorizer context. The entrypoint strips any client-supplied copies
// before setting them, so inside Lambda their presence implies a verified
// identity. No other deployment may honor them.
const (
	HeaderGatewayAuthorized = "X-API-Gateway-Authorized"
	HeaderUserID            = "X-User-ID"
	HeaderUserEmail         = "X-User-Email"
	HeaderUserGroups        = "X-User-Groups"
)

// Authenticate resolves the request principal and stores it in the context.
//
// Two trust paths exist. Behind API Gateway the Cognito authorizer has
// already verified the token and the Lambda entrypoint forwards its claims
// via the X-User-* headers; trustGatewayHeaders must be true only in that
// deployment, where the entrypoint controls the headers. Everywhere else
// the middleware validates a bearer token itself and the X-User-* headers
// are ignored, since a direct client could forge them. validator may be
// nil, in which case only the gateway path works.
func Authenticate(validator *auth.JWTValidator, trustGatewayHeaders bool, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolvePrincipal(r, validator, trustGatewayHeaders)
			if err != nil {
				logger.Debug("authentication failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				common.RespondError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := auth.SetPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolvePrincipal(r *http.Request, validator *auth.JWTValidator, trustGatewayHeaders bool) (*auth.Principal, error) {
	if trustGatewayHeaders && r.Header.Get(HeaderGatewayAuthorized) == "true" {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			return nil, errors.New("missing user context from API Gateway")
		}
		return &auth.Principal{
			UserID: userID,
			Email:  r.Header.Get(HeaderUserEmail),
			Groups: auth.NormalizeGroups(r.Header.Get(HeaderUserGroups)),
		}, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid authorization header format")
	}
	if validator == nil {
		return nil, errors.New("bearer authentication is not configured")
	}

	principal, err := validator.ValidateToken(parts[1])
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, errors.New("token has expired")
		case errors.Is(err, auth.ErrInvalidSignature):
			return nil, errors.New("invalid token signature")
		default:
			return nil, errors.New("invalid token")
		}
	}
	if principal.UserID == "" {
		return nil, errors.New("token carries no subject")
	}
	return principal, nil
}

// RequireGroups rejects requests whose principal belongs to none of the
// given groups. Missing identity is 401, insufficient membership 403.
func RequireGroups(groups ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.GetPrincipal(r.Context())
			if err != nil {
				common.RespondAppError(w, err)
				return
			}
			if !principal.HasAnyGroup(groups...) {
				common.RespondError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
