package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"live-practice-service/internal/game"
)

// Role distinguishes teacher and student callers.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Claims is the token payload issued by the platform's auth service.
type Claims struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Sign issues a token; used by tests and local tooling.
func (a *Authenticator) Sign(userID, name string, role Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
	})
	return token.SignedString(a.secret)
}

// Parse validates raw and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

type contextKey struct{}

// Middleware rejects requests without a valid bearer token and stashes the
// claims in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.claimsFromRequest(r)
		if err != nil {
			writeDetail(w, http.StatusForbidden, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, claims)))
	})
}

// claimsFromRequest accepts a bearer header or, for sockets, a token query
// parameter.
func (a *Authenticator) claimsFromRequest(r *http.Request) (*Claims, error) {
	raw := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		raw = strings.TrimPrefix(header, "Bearer ")
	}
	if raw == "" {
		return nil, fmt.Errorf("missing token")
	}
	return a.Parse(raw)
}

func claimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}

func callerFrom(claims *Claims) game.Caller {
	return game.Caller{ID: claims.Subject, Name: claims.Name}
}
