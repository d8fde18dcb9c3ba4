package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
	RoleKey    contextKey = "role"
)

var (
	ErrMissingToken  = errors.New("missing authorization header")
	ErrMalformedAuth = errors.New("invalid authorization header format")
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidToken  = errors.New("invalid token")
)

// ParseBearer verifies the HS256 bearer token on r and returns its
// user_id and role claims
func ParseBearer(r *http.Request, secret string) (subject, role string, err error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "", ErrMissingToken
	}

	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || raw == "" {
		return "", "", ErrMalformedAuth
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrTokenExpired
		}
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}

	subject, okSubject := claims["user_id"].(string)
	role, okRole := claims["role"].(string)
	if !okSubject || !okRole {
		return "", "", ErrInvalidToken
	}
	return subject, role, nil
}

// AuthMiddleware rejects requests without a valid service token and stores
// the caller's subject and role in the request context
func AuthMiddleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, role, err := ParseBearer(r, secret)
			if err != nil {
				logger.Debug("Authentication failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				RespondWithError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HasValidToken reports whether r carries a token signed with secret
func HasValidToken(secret string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		_, _, err := ParseBearer(r, secret)
		return err == nil
	}
}

func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
