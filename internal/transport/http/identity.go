package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"osint-challenge-service/internal/domain"
)

type learnerKey struct{}

type learnerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity resolves the learner label for a request. With a secret configured it
// verifies HS256 bearer tokens; otherwise it trusts the X-Learner header.
type Identity struct {
	secret []byte
	issuer string
}

func NewIdentity(secret, issuer string) *Identity {
	return &Identity{secret: []byte(secret), issuer: issuer}
}

// Middleware stores the learner label in the request context. Requests without
// credentials proceed anonymously; invalid tokens are rejected.
func (i *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		learner, err := i.resolve(r)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), learnerKey{}, learner)))
	})
}

func (i *Identity) resolve(r *http.Request) (string, error) {
	if len(i.secret) == 0 {
		return strings.TrimSpace(r.Header.Get("X-Learner")), nil
	}

	raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if raw == "" {
		// Browsers cannot set headers on websocket upgrades.
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		return "", nil
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	claims := &learnerClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}
	if claims.Email != "" {
		return claims.Email, nil
	}
	return claims.Subject, nil
}

// LearnerFrom returns the learner label resolved by Identity.Middleware.
func LearnerFrom(ctx context.Context) string {
	learner, _ := ctx.Value(learnerKey{}).(string)
	return learner
}
