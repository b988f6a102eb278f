// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"propage/internal/models"
)

// SectionStore handles template-section and section-item database operations.
type SectionStore struct {
	db *sql.DB
}

// NewSectionStore creates a new SectionStore with the given database connection.
func NewSectionStore(db *sql.DB) *SectionStore {
	return &SectionStore{db: db}
}

// CreateSection inserts a new section for a template.
func (s *SectionStore) CreateSection(templateID uuid.UUID, title string, orderIndex int) (*models.TemplateSection, error) {
	sec := &models.TemplateSection{}
	err := s.db.QueryRow(`
		INSERT INTO template_sections (template_id, title, order_index)
		VALUES ($1, $2, $3)
		RETURNING id, template_id, title, order_index, created_at, updated_at
	`, templateID, title, orderIndex).Scan(
		&sec.ID, &sec.TemplateID, &sec.Title, &sec.OrderIndex, &sec.CreatedAt, &sec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	return sec, nil
}

// UpdateSection sets a section's title and, when orderIndex is non-nil, its
// position. Stamps updated_at. Returns nil if the section does not exist.
func (s *SectionStore) UpdateSection(id uuid.UUID, title string, orderIndex *int) (*models.TemplateSection, error) {
	sec := &models.TemplateSection{}
	var err error
	if orderIndex != nil {
		err = s.db.QueryRow(`
			UPDATE template_sections
			SET title = $1, order_index = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING id, template_id, title, order_index, created_at, updated_at
		`, title, *orderIndex, id).Scan(
			&sec.ID, &sec.TemplateID, &sec.Title, &sec.OrderIndex, &sec.CreatedAt, &sec.UpdatedAt,
		)
	} else {
		err = s.db.QueryRow(`
			UPDATE template_sections
			SET title = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, template_id, title, order_index, created_at, updated_at
		`, title, id).Scan(
			&sec.ID, &sec.TemplateID, &sec.Title, &sec.OrderIndex, &sec.CreatedAt, &sec.UpdatedAt,
		)
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update section: %w", err)
	}
	return sec, nil
}

// TemplateIDForSection resolves the template owning a section. Returns
// uuid.Nil when the section does not exist.
func (s *SectionStore) TemplateIDForSection(id uuid.UUID) (uuid.UUID, error) {
	var templateID uuid.UUID
	err := s.db.QueryRow(
		`SELECT template_id FROM template_sections WHERE id = $1`, id,
	).Scan(&templateID)
	if err == sql.ErrNoRows {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("section template lookup: %w", err)
	}
	return templateID, nil
}

// TemplateIDForItem resolves the template owning a section item. Returns
// uuid.Nil when the item does not exist.
func (s *SectionStore) TemplateIDForItem(id uuid.UUID) (uuid.UUID, error) {
	var templateID uuid.UUID
	err := s.db.QueryRow(`
		SELECT sec.template_id
		FROM template_section_items it
		JOIN template_sections sec ON sec.id = it.section_id
		WHERE it.id = $1
	`, id).Scan(&templateID)
	if err == sql.ErrNoRows {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("item template lookup: %w", err)
	}
	return templateID, nil
}

// DeleteSection removes a section by ID. Its items are removed by the
// foreign-key cascade. Returns true if a row was deleted.
func (s *SectionStore) DeleteSection(id uuid.UUID) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM template_sections WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete section: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// CreateItem inserts a new text chip into a section.
func (s *SectionStore) CreateItem(sectionID uuid.UUID, text string, orderIndex int) (*models.TemplateSectionItem, error) {
	it := &models.TemplateSectionItem{}
	err := s.db.QueryRow(`
		INSERT INTO template_section_items (section_id, text, order_index)
		VALUES ($1, $2, $3)
		RETURNING id, section_id, text, order_index, created_at
	`, sectionID, text, orderIndex).Scan(
		&it.ID, &it.SectionID, &it.Text, &it.OrderIndex, &it.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create section item: %w", err)
	}
	return it, nil
}

// UpdateItem sets an item's text and, when orderIndex is non-nil, its
// position. Returns nil if the item does not exist.
func (s *SectionStore) UpdateItem(id uuid.UUID, text string, orderIndex *int) (*models.TemplateSectionItem, error) {
	it := &models.TemplateSectionItem{}
	var err error
	if orderIndex != nil {
		err = s.db.QueryRow(`
			UPDATE template_section_items SET text = $1, order_index = $2
			WHERE id = $3
			RETURNING id, section_id, text, order_index, created_at
		`, text, *orderIndex, id).Scan(
			&it.ID, &it.SectionID, &it.Text, &it.OrderIndex, &it.CreatedAt,
		)
	} else {
		err = s.db.QueryRow(`
			UPDATE template_section_items SET text = $1
			WHERE id = $2
			RETURNING id, section_id, text, order_index, created_at
		`, text, id).Scan(
			&it.ID, &it.SectionID, &it.Text, &it.OrderIndex, &it.CreatedAt,
		)
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update section item: %w", err)
	}
	return it, nil
}

// DeleteItem removes a text chip by ID. Returns true if a row was deleted.
func (s *SectionStore) DeleteItem(id uuid.UUID) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM template_section_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete section item: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
