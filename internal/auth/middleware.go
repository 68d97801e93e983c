package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue with a plain string key lets any package read or shadow
// the value. A package-private type means only this package can set or read
// the user id.
type contextKey string

const userIDKey contextKey = "userID"

var errMissingToken = errors.New("auth: missing authorization header")

// TokenValidator is the part of TokenService the middleware needs.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the token from the Authorization header, validates it, and stores
// the user id in the request context. If the token is missing or invalid it
// writes 401 and the downstream handler never runs.
//
// MIDDLEWARE PATTERN IN GO:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... before ...
//	        next.ServeHTTP(w, r)
//	        // ... after ...
//	    })
//	}
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				message := "valid authentication required"
				if errors.Is(err, errMissingToken) {
					message = "authorization header is required"
				}
				writeUnauthorized(w, message)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID. RequireAuth uses it, and
// handler tests use it to fake an authenticated request.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns ("", false) if no valid token was present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the Authorization header and validates the token in it.
//
// Web clients send the bare token; other clients send "Bearer <token>".
// Both are accepted.
func extractUserID(r *http.Request, tokens TokenValidator) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errMissingToken
	}

	token := header
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		token = strings.TrimSpace(rest)
	}
	if token == "" {
		return "", errMissingToken
	}

	return tokens.Validate(token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
