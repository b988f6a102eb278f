// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"propage/internal/cache"
	"propage/internal/models"
	"propage/internal/store"
)

func TestTemplateBySlugCaching(t *testing.T) {
	env := newTestEnv(t)
	cleanTemplates(t, env.DB, "public-cache-page")
	t.Cleanup(func() { cleanTemplates(t, env.DB, "public-cache-page") })

	tpl, err := env.TemplateStore.Create(store.CreateTemplateParams{Slug: "public-cache-page", Name: "First Name"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/pages/public-cache-page", nil)
		req = withChiURLParam(req, "slug", "public-cache-page")
		rec := httptest.NewRecorder()
		env.Public.TemplateBySlug(rec, req)
		return rec
	}

	rec := get()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	// The first hit populated the cache.
	ctx := context.Background()
	if _, ok := env.PageCache.Get(ctx, cache.TemplateKey(tpl.Slug)); !ok {
		t.Fatal("cache not populated after first request")
	}

	// A direct DB rename is invisible until the cache entry goes away.
	newName := "Second Name"
	if _, err := env.TemplateStore.Update(tpl.ID, store.TemplatePatch{Name: &newName}); err != nil {
		t.Fatalf("rename template: %v", err)
	}
	rec = get()
	var got models.ProfileTemplate
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "First Name" {
		t.Errorf("cached name = %q, want the stale %q", got.Name, "First Name")
	}

	env.PageCache.Invalidate(ctx, cache.TemplateKey(tpl.Slug))
	rec = get()
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Second Name" {
		t.Errorf("fresh name = %q, want %q", got.Name, "Second Name")
	}
}

func TestTemplateBySlugNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/pages/no-such-page", nil)
	req = withChiURLParam(req, "slug", "no-such-page")
	rec := httptest.NewRecorder()
	env.Public.TemplateBySlug(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProfileByUsernamePublicView(t *testing.T) {
	env := newTestEnv(t)
	cleanProfiles(t, env.DB, "pub-view@handler-test.local")
	t.Cleanup(func() { cleanProfiles(t, env.DB, "pub-view@handler-test.local") })

	user, err := env.ProfileStore.Create("pub-view@handler-test.local", "secret123", "pub-view", "Public View", models.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/u/pub-view", nil)
	req = withChiURLParam(req, "username", "pub-view")
	rec := httptest.NewRecorder()
	env.Public.ProfileByUsername(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}

	// The public payload carries identity fields only. Email, role, and the
	// account id stay out of the response.
	body := rec.Body.String()
	if strings.Contains(body, user.Email) {
		t.Error("public profile leaks the email")
	}
	if strings.Contains(body, user.ID.String()) {
		t.Error("public profile leaks the account id")
	}

	var got publicProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Username != "pub-view" || got.Name != "Public View" {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Image != models.DefaultProfileImage {
		t.Errorf("image = %q, want the default placeholder", got.Image)
	}

	// Unknown usernames are a 404, not an empty profile.
	req = httptest.NewRequest(http.MethodGet, "/u/nobody-here", nil)
	req = withChiURLParam(req, "username", "nobody-here")
	rec = httptest.NewRecorder()
	env.Public.ProfileByUsername(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown username: status = %d, want 404", rec.Code)
	}
}
