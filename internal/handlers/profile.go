package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"propage/internal/auth"
	"propage/internal/cache"
	"propage/internal/store"
)

// Profile groups handlers for reading and editing user profiles.
type Profile struct {
	authz     *auth.Service
	profiles  *store.ProfileStore
	pageCache *cache.PageCache
}

// NewProfile creates a new Profile handler group.
func NewProfile(authz *auth.Service, profiles *store.ProfileStore, pageCache *cache.PageCache) *Profile {
	return &Profile{
		authz:     authz,
		profiles:  profiles,
		pageCache: pageCache,
	}
}

// profilePatchRequest is the sparse update body. A field left out of the
// JSON stays untouched; pointers distinguish absent from empty.
type profilePatchRequest struct {
	Name  *string `json:"name"`
	Bio   *string `json:"bio"`
	Image *string `json:"image"`
}

func (req *profilePatchRequest) toPatch() store.ProfilePatch {
	return store.ProfilePatch{
		Name:  req.Name,
		Bio:   req.Bio,
		Image: req.Image,
	}
}

// Get returns a profile by ID. Viewing requires the same permission as
// editing since the payload includes the account email.
func (p *Profile) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if !p.authz.CanEditID(r.Context(), id.String()) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	profile, err := p.profiles.FindByID(id)
	if err != nil {
		slog.Error("profile lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Update applies a sparse patch to a profile addressed by ID. Only the
// owner or an admin may edit; the check resolves the acting user from the
// database, so a stale session cannot bypass a role change.
func (p *Profile) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if !p.authz.CanEditID(r.Context(), id.String()) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	var req profilePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := p.profiles.Update(id, req.toPatch())
	if err != nil {
		slog.Error("profile update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	p.pageCache.Invalidate(r.Context(), cache.ProfileKey(updated.Username))
	writeJSON(w, http.StatusOK, updated)
}

// UpdateByUsername applies a sparse patch addressed by public username.
func (p *Profile) UpdateByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if !p.authz.CanEdit(r.Context(), username) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	var req profilePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := p.profiles.UpdateByUsername(username, req.toPatch())
	if err != nil {
		slog.Error("profile update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	p.pageCache.Invalidate(r.Context(), cache.ProfileKey(username))
	writeJSON(w, http.StatusOK, updated)
}
