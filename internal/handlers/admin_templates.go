// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"propage/internal/cache"
	"propage/internal/models"
	"propage/internal/store"
)

// Admin groups the admin management handlers for templates, their nested
// sections and footer items, and user accounts.
type Admin struct {
	templates   *store.TemplateStore
	sections    *store.SectionStore
	footerItems *store.FooterItemStore
	profiles    *store.ProfileStore
	pageCache   *cache.PageCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(
	templates *store.TemplateStore,
	sections *store.SectionStore,
	footerItems *store.FooterItemStore,
	profiles *store.ProfileStore,
	pageCache *cache.PageCache,
) *Admin {
	return &Admin{
		templates:   templates,
		sections:    sections,
		footerItems: footerItems,
		profiles:    profiles,
		pageCache:   pageCache,
	}
}

// invalidateTemplate drops the cached public page for the template with the
// given ID. Best-effort; a stale entry expires with the TTL anyway.
func (a *Admin) invalidateTemplate(r *http.Request, templateID uuid.UUID) {
	tpl, err := a.templates.FindByID(templateID)
	if err != nil || tpl == nil {
		return
	}
	a.pageCache.Invalidate(r.Context(), cache.TemplateKey(tpl.Slug))
}

// ListTemplates returns all templates, newest first, without nested rows.
func (a *Admin) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := a.templates.List()
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// GetTemplate returns one template with sections, items, and footer items.
func (a *Admin) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	tpl, err := a.templates.FindByID(id)
	if err != nil {
		slog.Error("template lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// createTemplateRequest is the creation body. Optional fields are pointers
// so absent and empty are distinct.
type createTemplateRequest struct {
	Slug                 string                `json:"slug"`
	Name                 string                `json:"name"`
	Description          *string               `json:"description"`
	HeroImage            *string               `json:"heroImage"`
	HeroImagePosition    *string               `json:"heroImagePosition"`
	KakaoLink            *string               `json:"kakaoLink"`
	PhoneLink            *string               `json:"phoneLink"`
	IntroMessage         *string               `json:"introMessage"`
	IntroItems           models.IntroItems     `json:"introItems"`
	PhoneNumber          *string               `json:"phoneNumber"`
	FooterText           *string               `json:"footerText"`
	FooterChecklistItems models.StringList     `json:"footerChecklistItems"`
	Footer2Title         *string               `json:"footer2Title"`
	Footer2Buttons       models.Footer2Buttons `json:"footer2Buttons"`
	SectionTitle         *string               `json:"sectionTitle"`
	Verified             bool                  `json:"verified"`
}

// CreateTemplate creates a template page. A slug collision is reported as
// 409 before the insert; the unique constraint still backs the race.
func (a *Admin) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if msg := validateNewTemplate(req.Slug, req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := a.templates.SlugExists(req.Slug)
	if err != nil {
		slog.Error("slug check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "a page with this slug already exists")
		return
	}

	tpl, err := a.templates.Create(store.CreateTemplateParams{
		Slug:                 req.Slug,
		Name:                 req.Name,
		Description:          req.Description,
		HeroImage:            req.HeroImage,
		HeroImagePosition:    req.HeroImagePosition,
		KakaoLink:            req.KakaoLink,
		PhoneLink:            req.PhoneLink,
		IntroMessage:         req.IntroMessage,
		IntroItems:           req.IntroItems,
		PhoneNumber:          req.PhoneNumber,
		FooterText:           req.FooterText,
		FooterChecklistItems: req.FooterChecklistItems,
		Footer2Title:         req.Footer2Title,
		Footer2Buttons:       req.Footer2Buttons,
		SectionTitle:         req.SectionTitle,
		Verified:             req.Verified,
	})
	if err != nil {
		slog.Error("create template failed", "error", err)
		// Race loser: the pre-check passed but the unique constraint fired.
		// The constraint error is surfaced rather than swallowed.
		if store.IsConflict(err) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("template created", "slug", tpl.Slug, "id", tpl.ID)
	writeJSON(w, http.StatusCreated, tpl)
}

// templatePatchRequest mirrors store.TemplatePatch with JSON field names.
type templatePatchRequest struct {
	Name                 *string                `json:"name"`
	Description          *string                `json:"description"`
	HeroImage            *string                `json:"heroImage"`
	HeroImagePosition    *string                `json:"heroImagePosition"`
	KakaoLink            *string                `json:"kakaoLink"`
	PhoneLink            *string                `json:"phoneLink"`
	IntroMessage         *string                `json:"introMessage"`
	IntroItems           *models.IntroItems     `json:"introItems"`
	PhoneNumber          *string                `json:"phoneNumber"`
	FooterText           *string                `json:"footerText"`
	FooterChecklistItems *models.StringList     `json:"footerChecklistItems"`
	Footer2Title         *string                `json:"footer2Title"`
	Footer2Buttons       *models.Footer2Buttons `json:"footer2Buttons"`
	SectionTitle         *string                `json:"sectionTitle"`
	Verified             *bool                  `json:"verified"`
}

// UpdateTemplate applies a sparse patch. Omitted fields keep their values;
// empty strings clear nullable columns and empty lists clear list columns.
func (a *Admin) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req templatePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tpl, err := a.templates.Update(id, store.TemplatePatch{
		Name:                 req.Name,
		Description:          req.Description,
		HeroImage:            req.HeroImage,
		HeroImagePosition:    req.HeroImagePosition,
		KakaoLink:            req.KakaoLink,
		PhoneLink:            req.PhoneLink,
		IntroMessage:         req.IntroMessage,
		IntroItems:           req.IntroItems,
		PhoneNumber:          req.PhoneNumber,
		FooterText:           req.FooterText,
		FooterChecklistItems: req.FooterChecklistItems,
		Footer2Title:         req.Footer2Title,
		Footer2Buttons:       req.Footer2Buttons,
		SectionTitle:         req.SectionTitle,
		Verified:             req.Verified,
	})
	if err != nil {
		slog.Error("update template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	a.pageCache.Invalidate(r.Context(), cache.TemplateKey(tpl.Slug))
	writeJSON(w, http.StatusOK, tpl)
}

// DeleteTemplate removes a template and everything nested under it.
func (a *Admin) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	// Resolve the slug first so the cache entry can be dropped after delete.
	tpl, err := a.templates.FindByID(id)
	if err != nil {
		slog.Error("template lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	if _, err := a.templates.Delete(id); err != nil {
		slog.Error("delete template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.pageCache.Invalidate(r.Context(), cache.TemplateKey(tpl.Slug))
	slog.Info("template deleted", "slug", tpl.Slug, "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// CheckSlug reports whether a slug is free. Used by the editor for inline
// availability feedback.
func (a *Admin) CheckSlug(w http.ResponseWriter, r *http.Request) {
	s := r.URL.Query().Get("slug")
	if s == "" {
		writeError(w, http.StatusBadRequest, "slug query parameter required")
		return
	}

	exists, err := a.templates.SlugExists(s)
	if err != nil {
		slog.Error("slug check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": !exists})
}

// ---- sections ----

// CreateSection adds a section to a template.
func (a *Admin) CreateSection(w http.ResponseWriter, r *http.Request) {
	templateID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Title      string `json:"title"`
		OrderIndex int    `json:"orderIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateSectionTitle(req.Title); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sec, err := a.sections.CreateSection(templateID, req.Title, req.OrderIndex)
	if err != nil {
		slog.Error("create section failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.invalidateTemplate(r, templateID)
	writeJSON(w, http.StatusCreated, sec)
}

// UpdateSection renames a section and optionally repositions it.
func (a *Admin) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Title      string `json:"title"`
		OrderIndex *int   `json:"orderIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateSectionTitle(req.Title); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sec, err := a.sections.UpdateSection(id, req.Title, req.OrderIndex)
	if err != nil {
		slog.Error("update section failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if sec == nil {
		writeError(w, http.StatusNotFound, "section not found")
		return
	}

	a.invalidateTemplate(r, sec.TemplateID)
	writeJSON(w, http.StatusOK, sec)
}

// DeleteSection removes a section and its items.
func (a *Admin) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	// Resolve the owning template before the row disappears, so the
	// public page cache can be dropped afterwards.
	templateID, err := a.sections.TemplateIDForSection(id)
	if err != nil {
		slog.Error("section template lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	deleted, err := a.sections.DeleteSection(id)
	if err != nil {
		slog.Error("delete section failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "section not found")
		return
	}

	a.invalidateTemplate(r, templateID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// CreateSectionItem adds a text chip to a section.
func (a *Admin) CreateSectionItem(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Text       string `json:"text"`
		OrderIndex int    `json:"orderIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateItemText(req.Text); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := a.sections.CreateItem(sectionID, req.Text, req.OrderIndex)
	if err != nil {
		slog.Error("create section item failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if templateID, err := a.sections.TemplateIDForSection(sectionID); err == nil {
		a.invalidateTemplate(r, templateID)
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateSectionItem edits a text chip.
func (a *Admin) UpdateSectionItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Text       string `json:"text"`
		OrderIndex *int   `json:"orderIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateItemText(req.Text); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := a.sections.UpdateItem(id, req.Text, req.OrderIndex)
	if err != nil {
		slog.Error("update section item failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if templateID, err := a.sections.TemplateIDForSection(item.SectionID); err == nil {
		a.invalidateTemplate(r, templateID)
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteSectionItem removes a text chip.
func (a *Admin) DeleteSectionItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	// Resolve the owning template before the row disappears.
	templateID, err := a.sections.TemplateIDForItem(id)
	if err != nil {
		slog.Error("item template lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	deleted, err := a.sections.DeleteItem(id)
	if err != nil {
		slog.Error("delete section item failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	a.invalidateTemplate(r, templateID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---- footer items ----

// CreateFooterItem adds a footer card to a template.
func (a *Admin) CreateFooterItem(w http.ResponseWriter, r *http.Request) {
	templateID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Emoji       *string           `json:"emoji"`
		Title       string            `json:"title"`
		Description *string           `json:"description"`
		Image       *string           `json:"image"`
		Images      models.StringList `json:"images"`
		OrderIndex  int               `json:"orderIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateSectionTitle(req.Title); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := a.footerItems.Create(store.CreateFooterItemParams{
		TemplateID:  templateID,
		Emoji:       req.Emoji,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Images:      req.Images,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		slog.Error("create footer item failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.invalidateTemplate(r, templateID)
	writeJSON(w, http.StatusCreated, item)
}

// UpdateFooterItem applies a sparse patch to a footer card.
func (a *Admin) UpdateFooterItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Emoji       *string            `json:"emoji"`
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Image       *string            `json:"image"`
		Images      *models.StringList `json:"images"`
		OrderIndex  *int               `json:"orderIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title != nil {
		if msg := validateSectionTitle(*req.Title); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	item, err := a.footerItems.Update(id, store.FooterItemPatch{
		Emoji:       req.Emoji,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Images:      req.Images,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		slog.Error("update footer item failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "footer item not found")
		return
	}

	a.invalidateTemplate(r, item.TemplateID)
	writeJSON(w, http.StatusOK, item)
}

// DeleteFooterItem removes a footer card.
func (a *Admin) DeleteFooterItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	item, err := a.footerItems.FindByID(id)
	if err != nil {
		slog.Error("footer item lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "footer item not found")
		return
	}

	if _, err := a.footerItems.Delete(id); err != nil {
		slog.Error("delete footer item failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.invalidateTemplate(r, item.TemplateID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// MoveFooterImage reorders a footer card's gallery by one position. Moves
// past either end are accepted and leave the order unchanged.
func (a *Admin) MoveFooterImage(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Index     int    `json:"index"`
		Direction string `json:"direction"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var dir models.MoveDirection
	switch req.Direction {
	case "up":
		dir = models.MoveUp
	case "down":
		dir = models.MoveDown
	default:
		writeError(w, http.StatusBadRequest, `direction must be "up" or "down"`)
		return
	}

	item, err := a.footerItems.MoveImage(id, req.Index, dir)
	if err != nil {
		slog.Error("move footer image failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "footer item not found")
		return
	}

	a.invalidateTemplate(r, item.TemplateID)
	writeJSON(w, http.StatusOK, item)
}
