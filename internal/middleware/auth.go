// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"propage/internal/session"
)

type contextKey string

// SessionKey is the context key under which LoadSession parks the
// resolved session data.
const SessionKey contextKey = "session"

// LoadSession resolves the request's session from Valkey and attaches it
// to the context for SessionFromCtx. It never rejects: no cookie, an
// expired session, or a Valkey outage all pass through as anonymous —
// enforcement belongs to RequireAuth and friends.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if data, err := store.Get(r.Context(), r); err == nil && data != nil {
				r = r.WithContext(context.WithValue(r.Context(), SessionKey, data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests with 401. Chain after LoadSession.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require2FA blocks admin sessions that have not yet passed TOTP
// verification. Non-admin sessions carry no 2FA obligation. Chain after
// RequireAuth.
func Require2FA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := SessionFromCtx(r.Context()); sess != nil && sess.Admin() && !sess.TwoFADone {
			jsonError(w, http.StatusForbidden, "two-factor setup required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects sessions whose login-time role was not admin. The
// role here is a snapshot; the admin route group re-checks the live role
// behind this gate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil || !sess.Admin() {
			jsonError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx returns the session LoadSession attached, or nil for an
// anonymous request.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// jsonError writes a minimal JSON error body. Handlers have a richer
// helper; middleware keeps its own to avoid an import cycle.
func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
