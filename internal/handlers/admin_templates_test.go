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

func TestCreateTemplateHandler(t *testing.T) {
	env := newTestEnv(t)
	cleanTemplates(t, env.DB, "handler-create-tpl")
	t.Cleanup(func() { cleanTemplates(t, env.DB, "handler-create-tpl") })

	body := `{"slug":"handler-create-tpl","name":"Handler Test Page","verified":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/templates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.Admin.CreateTemplate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var tpl models.ProfileTemplate
	if err := json.Unmarshal(rec.Body.Bytes(), &tpl); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if tpl.Slug != "handler-create-tpl" || tpl.Name != "Handler Test Page" || !tpl.Verified {
		t.Errorf("unexpected template: %+v", tpl)
	}

	// Same slug again is a conflict.
	req = httptest.NewRequest(http.MethodPost, "/api/admin/templates", strings.NewReader(body))
	rec = httptest.NewRecorder()
	env.Admin.CreateTemplate(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate slug: status = %d, want 409", rec.Code)
	}
}

func TestCreateTemplateHandlerValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid slug", `{"slug":"Bad Slug","name":"Page"}`},
		{"missing name", `{"slug":"good-slug","name":""}`},
		{"malformed JSON", `{"slug":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/templates", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			env.Admin.CreateTemplate(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCheckSlugHandler(t *testing.T) {
	env := newTestEnv(t)
	cleanTemplates(t, env.DB, "handler-check-slug")
	t.Cleanup(func() { cleanTemplates(t, env.DB, "handler-check-slug") })

	if _, err := env.TemplateStore.Create(store.CreateTemplateParams{Slug: "handler-check-slug", Name: "Taken"}); err != nil {
		t.Fatalf("create template: %v", err)
	}

	check := func(slug string) map[string]bool {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/templates/check-slug?slug="+slug, nil)
		rec := httptest.NewRecorder()
		env.Admin.CheckSlug(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var out map[string]bool
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	if out := check("handler-check-slug"); out["available"] {
		t.Error("taken slug reported as available")
	}
	if out := check("handler-check-slug-free"); !out["available"] {
		t.Error("free slug reported as taken")
	}

	// Missing query parameter.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/templates/check-slug", nil)
	rec := httptest.NewRecorder()
	env.Admin.CheckSlug(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing slug: status = %d, want 400", rec.Code)
	}
}

func TestUpdateTemplateInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	cleanTemplates(t, env.DB, "handler-cache-tpl")
	t.Cleanup(func() { cleanTemplates(t, env.DB, "handler-cache-tpl") })

	tpl, err := env.TemplateStore.Create(store.CreateTemplateParams{Slug: "handler-cache-tpl", Name: "Cached"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	ctx := context.Background()
	key := cache.TemplateKey(tpl.Slug)
	env.PageCache.Set(ctx, key, []byte(`{"stale":true}`))

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/templates/"+tpl.ID.String(),
		strings.NewReader(`{"name":"Renamed"}`))
	req = withChiURLParam(req, "id", tpl.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.UpdateTemplate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if _, ok := env.PageCache.Get(ctx, key); ok {
		t.Error("cache entry survived template update")
	}
}

func TestUpdateTemplateNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/templates/x",
		strings.NewReader(`{"name":"Ghost"}`))
	req = withChiURLParam(req, "id", "00000000-0000-0000-0000-000000000000")
	rec := httptest.NewRecorder()
	env.Admin.UpdateTemplate(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	// Non-UUID parameter is a bad request, not a lookup miss.
	req = httptest.NewRequest(http.MethodPatch, "/api/admin/templates/x",
		strings.NewReader(`{"name":"Ghost"}`))
	req = withChiURLParam(req, "id", "not-a-uuid")
	rec = httptest.NewRecorder()
	env.Admin.UpdateTemplate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad uuid: status = %d, want 400", rec.Code)
	}
}

func TestSectionHandlers(t *testing.T) {
	env := newTestEnv(t)
	cleanTemplates(t, env.DB, "handler-section-tpl")
	t.Cleanup(func() { cleanTemplates(t, env.DB, "handler-section-tpl") })

	tpl, err := env.TemplateStore.Create(store.CreateTemplateParams{Slug: "handler-section-tpl", Name: "Sections"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	// Create a section under the template.
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"title":"Skills","orderIndex":0}`))
	req = withChiURLParam(req, "id", tpl.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.CreateSection(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create section: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var sec models.TemplateSection
	if err := json.Unmarshal(rec.Body.Bytes(), &sec); err != nil {
		t.Fatalf("decode section: %v", err)
	}

	// Blank title is rejected.
	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"title":"  "}`))
	req = withChiURLParam(req, "id", tpl.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.CreateSection(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank title: status = %d, want 400", rec.Code)
	}

	// Add an item to the section.
	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"text":"Go","orderIndex":0}`))
	req = withChiURLParam(req, "id", sec.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.CreateSectionItem(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var item models.TemplateSectionItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}

	// Rename the section.
	req = httptest.NewRequest(http.MethodPatch, "/x", strings.NewReader(`{"title":"Expertise"}`))
	req = withChiURLParam(req, "id", sec.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.UpdateSection(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update section: status = %d; body: %s", rec.Code, rec.Body.String())
	}

	// Delete the item, then the section. A second section delete is a 404.
	req = httptest.NewRequest(http.MethodDelete, "/x", nil)
	req = withChiURLParam(req, "id", item.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.DeleteSectionItem(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("delete item: status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/x", nil)
	req = withChiURLParam(req, "id", sec.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.DeleteSection(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("delete section: status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/x", nil)
	req = withChiURLParam(req, "id", sec.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.DeleteSection(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: status = %d, want 404", rec.Code)
	}
}

func TestSectionItemEditsInvalidateCache(t *testing.T) {
	env := newTestEnv(t)
	cleanTemplates(t, env.DB, "handler-item-cache-tpl")
	t.Cleanup(func() { cleanTemplates(t, env.DB, "handler-item-cache-tpl") })

	tpl, err := env.TemplateStore.Create(store.CreateTemplateParams{Slug: "handler-item-cache-tpl", Name: "Item Cache"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	sec, err := env.SectionStore.CreateSection(tpl.ID, "Skills", 0)
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	item, err := env.SectionStore.CreateItem(sec.ID, "Go", 0)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	ctx := context.Background()
	key := cache.TemplateKey(tpl.Slug)
	seed := func() {
		env.PageCache.Set(ctx, key, []byte(`{"stale":true}`))
	}
	cached := func() bool {
		_, ok := env.PageCache.Get(ctx, key)
		return ok
	}

	// Adding an item drops the cached public page.
	seed()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"text":"SQL","orderIndex":1}`))
	req = withChiURLParam(req, "id", sec.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.CreateSectionItem(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item via handler: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if cached() {
		t.Error("cache entry survived item create")
	}

	// So does editing one.
	seed()
	req = httptest.NewRequest(http.MethodPatch, "/x", strings.NewReader(`{"text":"Rust"}`))
	req = withChiURLParam(req, "id", item.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.UpdateSectionItem(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update item: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if cached() {
		t.Error("cache entry survived item update")
	}

	// So does deleting an item.
	seed()
	req = httptest.NewRequest(http.MethodDelete, "/x", nil)
	req = withChiURLParam(req, "id", item.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.DeleteSectionItem(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete item: status = %d", rec.Code)
	}
	if cached() {
		t.Error("cache entry survived item delete")
	}

	// And deleting the whole section.
	seed()
	req = httptest.NewRequest(http.MethodDelete, "/x", nil)
	req = withChiURLParam(req, "id", sec.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.DeleteSection(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete section: status = %d", rec.Code)
	}
	if cached() {
		t.Error("cache entry survived section delete")
	}
}

func TestMoveFooterImageHandler(t *testing.T) {
	env := newTestEnv(t)
	cleanTemplates(t, env.DB, "handler-move-tpl")
	t.Cleanup(func() { cleanTemplates(t, env.DB, "handler-move-tpl") })

	tpl, err := env.TemplateStore.Create(store.CreateTemplateParams{Slug: "handler-move-tpl", Name: "Gallery"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	fi, err := env.FooterStore.Create(store.CreateFooterItemParams{
		TemplateID: tpl.ID,
		Title:      "Gallery card",
		Images:     models.StringList{"a.jpg", "b.jpg", "c.jpg"},
	})
	if err != nil {
		t.Fatalf("create footer item: %v", err)
	}

	move := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		req = withChiURLParam(req, "id", fi.ID.String())
		rec := httptest.NewRecorder()
		env.Admin.MoveFooterImage(rec, req)
		return rec
	}

	rec := move(`{"index":1,"direction":"up"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("move up: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var moved models.TemplateFooterItem
	if err := json.Unmarshal(rec.Body.Bytes(), &moved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(moved.Images) != 3 || moved.Images[0] != "b.jpg" || moved.Images[1] != "a.jpg" {
		t.Errorf("images after move = %v, want [b.jpg a.jpg c.jpg]", moved.Images)
	}

	// Moving the first image up is accepted but changes nothing.
	rec = move(`{"index":0,"direction":"up"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("boundary move: status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &moved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if moved.Images[0] != "b.jpg" {
		t.Errorf("boundary move changed order: %v", moved.Images)
	}

	rec = move(`{"index":0,"direction":"sideways"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad direction: status = %d, want 400", rec.Code)
	}
}
