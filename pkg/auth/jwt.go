package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation errors.
var (
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidToken     = errors.New("invalid token")
)

// JWTConfig configures local bearer-token validation. Used only outside
// Lambda; behind API Gateway the authorizer has already verified the token.
type JWTConfig struct {
	SecretKey string
	Issuer    string
}

// JWTValidator validates HS256 bearer tokens and extracts the identity
// claims the Cognito authorizer would otherwise provide.
type JWTValidator struct {
	config JWTConfig
}

// NewJWTValidator creates a validator.
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	return &JWTValidator{config: config}, nil
}

// ValidateToken parses and verifies a token, returning the principal
// carried in its claims.
func (v *JWTValidator) ValidateToken(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.config.SecretKey), nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return PrincipalFromClaims(claims), nil
}

// PrincipalFromClaims builds a Principal from verified Cognito-shaped
// claims. The subject falls back to cognito:username for user-pool tokens
// that omit sub.
func PrincipalFromClaims(claims map[string]interface{}) *Principal {
	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["cognito:username"].(string)
	}
	email, _ := claims["email"].(string)

	return &Principal{
		UserID: userID,
		Email:  email,
		Groups: NormalizeGroups(claims["cognito:groups"]),
	}
}
