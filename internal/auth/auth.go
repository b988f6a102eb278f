// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth resolves the acting user for a request and answers
// authorization questions. The session carries only an identity snapshot;
// every decision here goes back to the database so role changes and
// deletions take effect immediately.
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"propage/internal/middleware"
	"propage/internal/models"
	"propage/internal/store"
)

// Service answers identity and permission questions for request handlers.
type Service struct {
	profiles *store.ProfileStore
}

// NewService creates an auth service backed by the profile store.
func NewService(profiles *store.ProfileStore) *Service {
	return &Service{profiles: profiles}
}

// CurrentUser returns the live profile for the request's session, or nil if
// the request is unauthenticated or the account no longer exists.
func (s *Service) CurrentUser(ctx context.Context) (*models.Profile, error) {
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil {
		return nil, nil
	}
	return s.profiles.FindByID(sess.UserID)
}

// IsAdmin reports whether the acting user holds the admin role right now.
// Any lookup failure counts as not-admin.
func (s *Service) IsAdmin(ctx context.Context) bool {
	p, err := s.CurrentUser(ctx)
	if err != nil || p == nil {
		return false
	}
	return p.IsAdmin()
}

// CanEdit reports whether the acting user may modify the profile with the
// given username. Admins may edit anyone; everyone else only themselves.
// Any failure to resolve the acting user denies access.
func (s *Service) CanEdit(ctx context.Context, username string) bool {
	p, err := s.CurrentUser(ctx)
	if err != nil || p == nil {
		return false
	}
	return p.IsAdmin() || p.Username == username
}

// RequireAdmin allows the request through only when the acting user's role
// in the database is admin right now. The session role gate in front of it
// is a snapshot from login; this check makes a demotion take effect on the
// next request instead of the next login.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsAdmin(r.Context()) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CanEditID is CanEdit addressed by profile ID.
func (s *Service) CanEditID(ctx context.Context, id string) bool {
	p, err := s.CurrentUser(ctx)
	if err != nil || p == nil {
		return false
	}
	return p.IsAdmin() || p.ID.String() == id
}
