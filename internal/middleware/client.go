// File: internal/middleware/client.go
package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/rfaizy/govassist/internal/auth"
)

type contextKey string

// ClientIDKey carries the validated browser client id through the request
// context.
const ClientIDKey contextKey = "client_id"

// ClientTokenCookie is the cookie the chat page sets on first load.
const ClientTokenCookie = "govassist_client"

// NewClientTokenMiddleware validates the browser client token on API routes.
func NewClientTokenMiddleware(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(ClientTokenCookie)
			if err != nil {
				http.Error(w, "Missing client token", http.StatusUnauthorized)
				return
			}

			clientID, err := auth.ValidateClientToken(cookie.Value, secretKey)
			if err != nil {
				log.Printf("[ClientMiddleware] Invalid token: %v", err)
				http.Error(w, "Invalid client token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClientIDKey, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
