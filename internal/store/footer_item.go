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

const footerItemColumns = `id, template_id, emoji, title, description, image, images,
       order_index, created_at, updated_at`

// FooterItemStore handles template footer-item database operations.
type FooterItemStore struct {
	db *sql.DB
}

// NewFooterItemStore creates a new FooterItemStore with the given database connection.
func NewFooterItemStore(db *sql.DB) *FooterItemStore {
	return &FooterItemStore{db: db}
}

func scanFooterItem(row *sql.Row) (*models.TemplateFooterItem, error) {
	it := &models.TemplateFooterItem{}
	err := row.Scan(
		&it.ID, &it.TemplateID, &it.Emoji, &it.Title, &it.Description,
		&it.Image, &it.Images, &it.OrderIndex, &it.CreatedAt, &it.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// FindByID retrieves a footer item by its UUID. Returns nil if not found.
func (s *FooterItemStore) FindByID(id uuid.UUID) (*models.TemplateFooterItem, error) {
	it, err := scanFooterItem(s.db.QueryRow(
		`SELECT `+footerItemColumns+` FROM template_footer_items WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("find footer item: %w", err)
	}
	return it, nil
}

// CreateFooterItemParams holds the fields for a new footer item.
type CreateFooterItemParams struct {
	TemplateID  uuid.UUID
	Emoji       *string
	Title       string
	Description *string
	Image       *string
	Images      models.StringList
	OrderIndex  int
}

// Create inserts a new footer item.
func (s *FooterItemStore) Create(p CreateFooterItemParams) (*models.TemplateFooterItem, error) {
	it, err := scanFooterItem(s.db.QueryRow(`
		INSERT INTO template_footer_items (template_id, emoji, title, description, image, images, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+footerItemColumns+`
	`, p.TemplateID, p.Emoji, p.Title, p.Description, p.Image, p.Images, p.OrderIndex))
	if err != nil {
		return nil, fmt.Errorf("create footer item: %w", err)
	}
	return it, nil
}

// FooterItemPatch is a sparse footer-item update. Nil fields are untouched.
// An empty Image string clears the icon; a non-nil pointer to an empty Images
// list clears the gallery.
type FooterItemPatch struct {
	Emoji       *string
	Title       *string
	Description *string
	Image       *string
	Images      *models.StringList
	OrderIndex  *int
}

// Update applies a sparse patch and stamps updated_at. Returns the updated
// row, or nil if the item does not exist.
func (s *FooterItemStore) Update(id uuid.UUID, patch FooterItemPatch) (*models.TemplateFooterItem, error) {
	b := &patchBuilder{}
	if patch.Emoji != nil {
		b.add("emoji", nullIfEmpty(*patch.Emoji))
	}
	if patch.Title != nil {
		b.add("title", *patch.Title)
	}
	if patch.Description != nil {
		b.add("description", nullIfEmpty(*patch.Description))
	}
	if patch.Image != nil {
		b.add("image", nullIfEmpty(*patch.Image))
	}
	if patch.Images != nil {
		b.add("images", *patch.Images)
	}
	if patch.OrderIndex != nil {
		b.add("order_index", *patch.OrderIndex)
	}
	b.sets = append(b.sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE template_footer_items SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(b.sets, ", "), b.arg(id), footerItemColumns,
	)

	it, err := scanFooterItem(s.db.QueryRow(query, b.args...))
	if err != nil {
		return nil, fmt.Errorf("update footer item: %w", err)
	}
	return it, nil
}

// Delete removes a footer item by ID. Returns true if a row was deleted.
func (s *FooterItemStore) Delete(id uuid.UUID) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM template_footer_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete footer item: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MoveImage swaps the gallery image at index with its neighbor in the given
// direction and persists the new order. Boundary moves are accepted as
// no-ops. Returns the item after the operation, or nil if it does not exist.
func (s *FooterItemStore) MoveImage(id uuid.UUID, index int, dir models.MoveDirection) (*models.TemplateFooterItem, error) {
	it, err := s.FindByID(id)
	if err != nil || it == nil {
		return it, err
	}

	if !it.MoveImage(index, dir) {
		return it, nil
	}

	return s.Update(id, FooterItemPatch{Images: &it.Images})
}
