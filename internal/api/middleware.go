/**
 * @description
 * This file contains the session token middleware. Login mints an HS256 JWT
 * carrying the live session id; the middleware verifies the signature and that
 * the token still points at the live session, so every token minted before a
 * logout (or a later login) stops working immediately.
 *
 * @dependencies
 * - net/http, strings, time: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: Token signing and verification.
 */

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crestbank/backoffice-service/internal/app"
)

const sessionIDClaim = "sid"

// MintSessionToken signs a session token for a freshly begun session.
func MintSessionToken(signingKey, sessionID string, operatorID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          fmt.Sprintf("%d", operatorID),
		sessionIDClaim: sessionID,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(signingKey))
}

// SessionAuthMiddleware validates the bearer token and matches its session id
// against the service's live session.
func SessionAuthMiddleware(signingKey string, service *app.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "Authorization header required")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				writeUnauthorized(w, "Invalid Authorization header format")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(signingKey), nil
			})
			if err != nil || !token.Valid {
				writeUnauthorized(w, "Invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeUnauthorized(w, "Invalid token claims")
				return
			}
			tokenSessionID, ok := claims[sessionIDClaim].(string)
			if !ok || tokenSessionID == "" {
				writeUnauthorized(w, "Session id not found in token")
				return
			}

			liveSessionID, err := service.SessionID()
			if err != nil || tokenSessionID != liveSessionID {
				writeUnauthorized(w, "Session is no longer active")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"success":false,"message":%q}`, message)
}
