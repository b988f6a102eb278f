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

// ImageStore handles all uploaded-image metadata operations.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore creates a new ImageStore with the given database connection.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// imageColumns lists the columns selected in image queries.
const imageColumns = `id, filename, original_name, content_type, size_bytes,
	s3_key, thumb_s3_key, uploader_id, created_at`

// scanImage scans an image row from the result set.
func scanImage(scanner interface{ Scan(...any) error }) (*models.Image, error) {
	var m models.Image
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.SizeBytes,
		&m.S3Key, &m.ThumbS3Key, &m.UploaderID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new image record and returns it with the generated ID.
func (s *ImageStore) Create(m *models.Image) (*models.Image, error) {
	err := s.db.QueryRow(`
		INSERT INTO images (filename, original_name, content_type, size_bytes,
			s3_key, thumb_s3_key, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+imageColumns,
		m.Filename, m.OriginalName, m.ContentType, m.SizeBytes,
		m.S3Key, m.ThumbS3Key, m.UploaderID,
	).Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.SizeBytes,
		&m.S3Key, &m.ThumbS3Key, &m.UploaderID, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	return m, nil
}

// FindByID retrieves a single image record by its UUID.
func (s *ImageStore) FindByID(id uuid.UUID) (*models.Image, error) {
	row := s.db.QueryRow(`SELECT `+imageColumns+` FROM images WHERE id = $1`, id)
	m, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find image by id: %w", err)
	}
	return m, nil
}

// FindByKey retrieves a single image record by its storage key. Used when a
// delete request arrives with a public URL instead of an ID.
func (s *ImageStore) FindByKey(key string) (*models.Image, error) {
	row := s.db.QueryRow(`SELECT `+imageColumns+` FROM images WHERE s3_key = $1`, key)
	m, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find image by key: %w", err)
	}
	return m, nil
}

// List returns image records ordered by creation date, with pagination.
func (s *ImageStore) List(limit, offset int) ([]models.Image, error) {
	rows, err := s.db.Query(`
		SELECT `+imageColumns+`
		FROM images
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var items []models.Image
	for rows.Next() {
		m, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// Delete removes an image record and returns it so the caller can clean up
// the corresponding storage objects.
func (s *ImageStore) Delete(id uuid.UUID) (*models.Image, error) {
	row := s.db.QueryRow(`
		DELETE FROM images WHERE id = $1
		RETURNING `+imageColumns, id)
	m, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete image: %w", err)
	}
	return m, nil
}

// Count returns the total number of image records.
func (s *ImageStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM images`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return count, nil
}
