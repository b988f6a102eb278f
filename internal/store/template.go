// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"propage/internal/models"
)

const templateColumns = `id, slug, name, description, hero_image, hero_image_position,
       kakao_link, phone_link, intro_message, intro_items, phone_number,
       footer_text, footer_checklist_items, footer2_title, footer2_buttons,
       section_title, verified, created_at, updated_at`

// TemplateStore handles all profile-template database operations, including
// the owned sections, section items, and footer items loaded with a template.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func scanTemplate(scan func(dest ...any) error) (*models.ProfileTemplate, error) {
	t := &models.ProfileTemplate{}
	err := scan(
		&t.ID, &t.Slug, &t.Name, &t.Description, &t.HeroImage, &t.HeroImagePosition,
		&t.KakaoLink, &t.PhoneLink, &t.IntroMessage, &t.IntroItems, &t.PhoneNumber,
		&t.FooterText, &t.FooterChecklistItems, &t.Footer2Title, &t.Footer2Buttons,
		&t.SectionTitle, &t.Verified, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all templates, newest first, without nested collections.
func (s *TemplateStore) List() ([]models.ProfileTemplate, error) {
	rows, err := s.db.Query(
		`SELECT ` + templateColumns + ` FROM profile_templates ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.ProfileTemplate
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template with its sections (each with ordered items)
// and footer items. Returns nil if not found.
func (s *TemplateStore) FindByID(id uuid.UUID) (*models.ProfileTemplate, error) {
	return s.find("id", id)
}

// FindBySlug retrieves a template by its public slug, fully loaded.
// Returns nil if not found.
func (s *TemplateStore) FindBySlug(slug string) (*models.ProfileTemplate, error) {
	return s.find("slug", slug)
}

func (s *TemplateStore) find(keyColumn string, key any) (*models.ProfileTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(
		`SELECT `+templateColumns+` FROM profile_templates WHERE `+keyColumn+` = $1`, key,
	).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by %s: %w", keyColumn, err)
	}

	if err := s.loadNested(t); err != nil {
		return nil, err
	}
	return t, nil
}

// loadNested fetches sections, their items, and footer items for a template,
// each list ordered by order_index. The per-section item queries fan out one
// query per section; template pages stay small enough that this has never
// been worth batching.
func (s *TemplateStore) loadNested(t *models.ProfileTemplate) error {
	rows, err := s.db.Query(`
		SELECT id, template_id, title, order_index, created_at, updated_at
		FROM template_sections
		WHERE template_id = $1
		ORDER BY order_index ASC
	`, t.ID)
	if err != nil {
		return fmt.Errorf("load sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sec models.TemplateSection
		if err := rows.Scan(&sec.ID, &sec.TemplateID, &sec.Title, &sec.OrderIndex, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return fmt.Errorf("scan section: %w", err)
		}
		t.Sections = append(t.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range t.Sections {
		items, err := s.loadSectionItems(t.Sections[i].ID)
		if err != nil {
			return err
		}
		t.Sections[i].Items = items
	}

	footer, err := s.loadFooterItems(t.ID)
	if err != nil {
		return err
	}
	t.FooterItems = footer
	return nil
}

func (s *TemplateStore) loadSectionItems(sectionID uuid.UUID) ([]models.TemplateSectionItem, error) {
	rows, err := s.db.Query(`
		SELECT id, section_id, text, order_index, created_at
		FROM template_section_items
		WHERE section_id = $1
		ORDER BY order_index ASC
	`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("load section items: %w", err)
	}
	defer rows.Close()

	var items []models.TemplateSectionItem
	for rows.Next() {
		var it models.TemplateSectionItem
		if err := rows.Scan(&it.ID, &it.SectionID, &it.Text, &it.OrderIndex, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan section item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *TemplateStore) loadFooterItems(templateID uuid.UUID) ([]models.TemplateFooterItem, error) {
	rows, err := s.db.Query(`
		SELECT id, template_id, emoji, title, description, image, images, order_index, created_at, updated_at
		FROM template_footer_items
		WHERE template_id = $1
		ORDER BY order_index ASC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("load footer items: %w", err)
	}
	defer rows.Close()

	var items []models.TemplateFooterItem
	for rows.Next() {
		var it models.TemplateFooterItem
		if err := rows.Scan(
			&it.ID, &it.TemplateID, &it.Emoji, &it.Title, &it.Description,
			&it.Image, &it.Images, &it.OrderIndex, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan footer item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SlugExists reports whether a template with the given slug already exists.
// Used as a fast-path pre-insert check; the unique constraint on the column
// is the authoritative guard against the concurrent-create race.
func (s *TemplateStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM profile_templates WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// CreateTemplateParams holds the fields for a new template. Optional fields
// are nil when absent and stored as NULL.
type CreateTemplateParams struct {
	Slug                 string
	Name                 string
	Description          *string
	HeroImage            *string
	HeroImagePosition    *string
	KakaoLink            *string
	PhoneLink            *string
	IntroMessage         *string
	IntroItems           models.IntroItems
	PhoneNumber          *string
	FooterText           *string
	FooterChecklistItems models.StringList
	Footer2Title         *string
	Footer2Buttons       models.Footer2Buttons
	SectionTitle         *string
	Verified             bool
}

// Create inserts a new template and returns it with empty nested collections.
func (s *TemplateStore) Create(p CreateTemplateParams) (*models.ProfileTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		INSERT INTO profile_templates (
			slug, name, description, hero_image, hero_image_position,
			kakao_link, phone_link, intro_message, intro_items, phone_number,
			footer_text, footer_checklist_items, footer2_title, footer2_buttons,
			section_title, verified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+templateColumns+`
	`, p.Slug, p.Name, p.Description, p.HeroImage, p.HeroImagePosition,
		p.KakaoLink, p.PhoneLink, p.IntroMessage, p.IntroItems, p.PhoneNumber,
		p.FooterText, p.FooterChecklistItems, p.Footer2Title, p.Footer2Buttons,
		p.SectionTitle, p.Verified,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// TemplatePatch is a sparse template update. Nil fields are left untouched;
// for nullable text columns an empty string clears the value, and for list
// fields a non-nil pointer to an empty list clears the column.
type TemplatePatch struct {
	Name                 *string
	Description          *string
	HeroImage            *string
	HeroImagePosition    *string
	KakaoLink            *string
	PhoneLink            *string
	IntroMessage         *string
	IntroItems           *models.IntroItems
	PhoneNumber          *string
	FooterText           *string
	FooterChecklistItems *models.StringList
	Footer2Title         *string
	Footer2Buttons       *models.Footer2Buttons
	SectionTitle         *string
	Verified             *bool
}

// Update applies a sparse patch and stamps updated_at. The slug is immutable
// after creation and deliberately absent from the patch. Returns the updated
// template fully loaded, or nil if it does not exist.
func (s *TemplateStore) Update(id uuid.UUID, patch TemplatePatch) (*models.ProfileTemplate, error) {
	b := &patchBuilder{}
	if patch.Name != nil {
		b.add("name", *patch.Name)
	}
	if patch.Description != nil {
		b.add("description", nullIfEmpty(*patch.Description))
	}
	if patch.HeroImage != nil {
		b.add("hero_image", nullIfEmpty(*patch.HeroImage))
	}
	if patch.HeroImagePosition != nil {
		b.add("hero_image_position", nullIfEmpty(*patch.HeroImagePosition))
	}
	if patch.KakaoLink != nil {
		b.add("kakao_link", nullIfEmpty(*patch.KakaoLink))
	}
	if patch.PhoneLink != nil {
		b.add("phone_link", nullIfEmpty(*patch.PhoneLink))
	}
	if patch.IntroMessage != nil {
		b.add("intro_message", nullIfEmpty(*patch.IntroMessage))
	}
	if patch.IntroItems != nil {
		b.add("intro_items", *patch.IntroItems)
	}
	if patch.PhoneNumber != nil {
		b.add("phone_number", nullIfEmpty(*patch.PhoneNumber))
	}
	if patch.FooterText != nil {
		b.add("footer_text", nullIfEmpty(*patch.FooterText))
	}
	if patch.FooterChecklistItems != nil {
		b.add("footer_checklist_items", *patch.FooterChecklistItems)
	}
	if patch.Footer2Title != nil {
		b.add("footer2_title", nullIfEmpty(*patch.Footer2Title))
	}
	if patch.Footer2Buttons != nil {
		b.add("footer2_buttons", *patch.Footer2Buttons)
	}
	if patch.SectionTitle != nil {
		b.add("section_title", nullIfEmpty(*patch.SectionTitle))
	}
	if patch.Verified != nil {
		b.add("verified", *patch.Verified)
	}
	b.sets = append(b.sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE profile_templates SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(b.sets, ", "), b.arg(id), templateColumns,
	)

	t, err := scanTemplate(s.db.QueryRow(query, b.args...).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	if err := s.loadNested(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a template by ID. Sections, section items, and footer items
// are removed by the foreign-key cascades. Returns true if a row was deleted.
func (s *TemplateStore) Delete(id uuid.UUID) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM profile_templates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Count returns the total number of templates.
func (s *TemplateStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM profile_templates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}
