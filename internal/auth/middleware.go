package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated identity-provider user id, if any.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func parseClaims(token, secret string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// TechnicianAuthMiddleware verifies the identity token and stashes the
// subject user id in the request context. Core code never reads ambient
// identity; it receives the id explicitly from here on down.
func TechnicianAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseClaims(bearerToken(r), jwtSecret)
			if err != nil {
				httperrors.Write(w, httperrors.Unauthorized("sign in required"))
				return
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				httperrors.Write(w, httperrors.Unauthorized("sign in required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, sub)))
		})
	}
}

// AdminAuthMiddleware accepts only tokens issued by the admin login, which
// carry role=admin.
func AdminAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseClaims(bearerToken(r), jwtSecret)
			if err != nil {
				httperrors.Write(w, httperrors.Unauthorized("unauthorized"))
				return
			}
			if role, _ := claims["role"].(string); role != "admin" {
				httperrors.Write(w, httperrors.Unauthorized("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
