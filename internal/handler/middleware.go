package handler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/credara/lending-engine/pkg/response"
)

type contextKey string

const clientIDKey contextKey = "client_id"

// AuthMiddleware resolves the authenticated client from an HS256 bearer token
// whose subject is the client's uuid. The engine itself never authenticates;
// it only consumes the client id resolved here.
func AuthMiddleware(secret string, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Unauthorized(w, "missing bearer token")
				return
			}

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
				func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
					}
					return []byte(secret), nil
				})
			if err != nil || !token.Valid {
				log.WithError(err).Debug("rejected bearer token")
				response.Unauthorized(w, "invalid token")
				return
			}

			clientID, err := uuid.Parse(claims.Subject)
			if err != nil {
				response.Unauthorized(w, "invalid token subject")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext returns the authenticated client id stored by
// AuthMiddleware.
func ClientIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	clientID, ok := ctx.Value(clientIDKey).(uuid.UUID)
	return clientID, ok
}

// ContextWithClientID is used by tests and internal callers to inject the
// authenticated client without going through the middleware.
func ContextWithClientID(ctx context.Context, clientID uuid.UUID) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// clientIP extracts the originating address: first hop of X-Forwarded-For
// when present, the peer address otherwise.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
