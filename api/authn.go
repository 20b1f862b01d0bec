/*
authn.go - JWT caller identity and admin gating

The public API trusts a bearer JWT (HS256) carrying the caller's
employee_id and an optional "admin" role claim, the same token shape an
upstream SSO proxy would mint. There is no login endpoint here: issuing
tokens is out of scope (spec.md Non-goals), this package only verifies
them.
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vilakshan/pli-leaderboard/model"
)

type ctxKey int

const callerCtxKey ctxKey = iota

// Caller is the identity extracted from a verified bearer token.
type Caller struct {
	EmployeeID model.EntityID
	IsAdmin    bool
}

type claims struct {
	EmployeeID string `json:"employee_id"`
	Admin      bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Authenticator verifies the bearer token on every request and stashes
// the resulting Caller in the request context; CallerFromContext reads
// it back. A missing/invalid token is not itself a 401 here — routes
// that require identity (me, admin/*) check RequireCaller/RequireAdmin
// themselves, so anonymous GET /leaderboard keeps working unauthenticated.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		var c claims
		_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || c.EmployeeID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), callerCtxKey, Caller{
			EmployeeID: model.EntityID(c.EmployeeID), IsAdmin: c.Admin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerCtxKey).(Caller)
	return c, ok
}

// RequireCaller 401s when the request carried no verifiable identity.
func RequireCaller(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		next(w, r)
	}
}

// RequireAdmin 403s a verified but non-admin caller, and 401s an
// unverified one.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if !c.IsAdmin {
			writeError(w, http.StatusForbidden, "admin role required", nil)
			return
		}
		next(w, r)
	}
}
