package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"propage/internal/cache"
	"propage/internal/store"
)

// Public groups the unauthenticated page endpoints. Responses are cached
// in Valkey; admin writes invalidate the affected keys.
type Public struct {
	templates *store.TemplateStore
	profiles  *store.ProfileStore
	pageCache *cache.PageCache
}

// NewPublic creates a new Public handler group.
func NewPublic(templates *store.TemplateStore, profiles *store.ProfileStore, pageCache *cache.PageCache) *Public {
	return &Public{
		templates: templates,
		profiles:  profiles,
		pageCache: pageCache,
	}
}

// publicProfile is the subset of a profile exposed on public pages.
// Email, role, and 2FA state stay private.
type publicProfile struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// TemplateBySlug serves a fully loaded template page.
func (p *Public) TemplateBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	key := cache.TemplateKey(slug)
	if payload, ok := p.pageCache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}

	tpl, err := p.templates.FindBySlug(slug)
	if err != nil {
		slog.Error("template lookup failed", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	payload, err := json.Marshal(tpl)
	if err != nil {
		slog.Error("template marshal failed", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.pageCache.Set(r.Context(), key, payload)
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// ProfileByUsername serves the public view of a user profile.
func (p *Public) ProfileByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	key := cache.ProfileKey(username)
	if payload, ok := p.pageCache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}

	profile, err := p.profiles.FindByUsername(username)
	if err != nil {
		slog.Error("profile lookup failed", "error", err, "username", username)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	payload, err := json.Marshal(publicProfile{
		Username: profile.Username,
		Name:     profile.Name,
		Bio:      profile.Bio,
		Image:    profile.Image,
	})
	if err != nil {
		slog.Error("profile marshal failed", "error", err, "username", username)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.pageCache.Set(r.Context(), key, payload)
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}
